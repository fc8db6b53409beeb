// Package worker consumes queued generation tasks and drives the
// pipeline for each one.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"sportsreels/internal/reel"
	"sportsreels/pkg/tasks"
)

// Runner executes one generation run end to end.
type Runner interface {
	Run(ctx context.Context, id string, req reel.Request) (reel.Result, error)
}

type Handler struct {
	pipeline Runner
}

func NewHandler(pipeline Runner) *Handler {
	return &Handler{pipeline: pipeline}
}

// Register installs the handler on mux for every task type it owns.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeGenerateVideo, h.HandleGenerateVideo)
}

// HandleGenerateVideo runs the pipeline for a queued request. Stage
// failures are terminal for the task: the record already carries the
// failure, so retrying would regenerate a video the caller has moved on
// from. Record load/write failures around the stages leave the record in
// processing, so those stay retryable for the queue to recover.
func (h *Handler) HandleGenerateVideo(ctx context.Context, t *asynq.Task) error {
	var p tasks.GenerateVideoPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal generate-video payload: %w", err)
	}

	slog.Info("Generation task started", "video_id", p.VideoID, "subject", p.SubjectName)

	_, err := h.pipeline.Run(ctx, p.VideoID, reel.Request{
		SubjectName:    p.SubjectName,
		Category:       p.Category,
		AdditionalInfo: p.AdditionalInfo,
	})
	if err != nil {
		slog.Error("Generation task failed", "video_id", p.VideoID, "error", err)
		var genErr *reel.GenerationError
		if errors.As(err, &genErr) {
			return fmt.Errorf("generate %s: %v: %w", p.VideoID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("generate %s: %w", p.VideoID, err)
	}

	return nil
}
