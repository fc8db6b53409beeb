package video

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ImageWindow returns how long each still image stays on screen so that
// the image track exactly covers the narration audio. imageCount must be
// positive; the orchestrator guarantees at least five images per run.
func ImageWindow(audioDuration float64, imageCount int) (float64, error) {
	if imageCount <= 0 {
		return 0, fmt.Errorf("image count must be positive, got %d", imageCount)
	}
	if audioDuration <= 0 {
		return 0, fmt.Errorf("audio duration must be positive, got %f", audioDuration)
	}
	return audioDuration / float64(imageCount), nil
}

// probeDuration asks ffprobe for the duration of a media file.
func probeDuration(ctx context.Context, ffprobePath, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseDuration(string(output))
}

func parseDuration(raw string) (float64, error) {
	dur, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("non-positive duration %f", dur)
	}
	return dur, nil
}
