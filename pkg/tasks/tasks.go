package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeGenerateVideo = "video:generate"

type GenerateVideoPayload struct {
	VideoID        string `json:"videoId"`
	SubjectName    string `json:"subjectName"`
	Category       string `json:"category"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

func NewGenerateVideoTask(p GenerateVideoPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal generate-video payload: %w", err)
	}
	return asynq.NewTask(TypeGenerateVideo, payload), nil
}
