// Package reel orchestrates one video generation run: narration script,
// key moment images, synthesized audio, and the final composed MP4, with
// the record's status tracking the run from processing to a terminal state.
package reel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sportsreels/internal/store"
	"sportsreels/internal/video"
)

const descriptionPreviewLen = 100

// Request describes what to generate a video about.
type Request struct {
	SubjectName    string `json:"subjectName"`
	Category       string `json:"category"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.SubjectName) == "" {
		return fmt.Errorf("%w: subjectName is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	return nil
}

// Result reports a completed run.
type Result struct {
	VideoID  string
	Script   string
	VideoURL string
}

type ScriptGenerator interface {
	GenerateScript(ctx context.Context, subject, sport, extra string) (string, error)
	ExtractKeyMoments(ctx context.Context, subject, sport, scriptText string, count int) ([]string, error)
}

type ImageSourcer interface {
	SourceImages(ctx context.Context, subject, sport string, moments []string) []string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, id string) (string, error)
}

type ReadyWaiter interface {
	WaitReady(ctx context.Context, url string, attempts int, delay time.Duration) error
}

type Composer interface {
	Compose(ctx context.Context, req video.ComposeRequest) (string, error)
}

type RecordStore interface {
	PutRecord(ctx context.Context, record store.VideoRecord) error
	GetRecord(ctx context.Context, id string) (store.VideoRecord, error)
}

type PipelineOptions struct {
	ImageCount    int
	ReadyAttempts int
	ReadyDelay    time.Duration
}

type Pipeline struct {
	scripts ScriptGenerator
	images  ImageSourcer
	speech  Synthesizer
	waiter  ReadyWaiter
	video   Composer
	records RecordStore
	opts    PipelineOptions
	now     func() time.Time
}

func NewPipeline(scripts ScriptGenerator, images ImageSourcer, speech Synthesizer,
	waiter ReadyWaiter, composer Composer, records RecordStore, opts PipelineOptions) *Pipeline {
	if opts.ImageCount <= 0 {
		opts.ImageCount = 5
	}
	if opts.ReadyAttempts <= 0 {
		opts.ReadyAttempts = 10
	}
	if opts.ReadyDelay <= 0 {
		opts.ReadyDelay = time.Second
	}
	return &Pipeline{
		scripts: scripts,
		images:  images,
		speech:  speech,
		waiter:  waiter,
		video:   composer,
		records: records,
		opts:    opts,
		now:     time.Now,
	}
}

// Begin writes the initial processing record for a validated request and
// returns it. The heavy work happens later in Run, usually on a worker.
func (p *Pipeline) Begin(ctx context.Context, id string, req Request) (store.VideoRecord, error) {
	if err := req.Validate(); err != nil {
		return store.VideoRecord{}, err
	}

	now := p.now().UTC()
	record := store.VideoRecord{
		ID:          id,
		Title:       fmt.Sprintf("%s - %s History", req.SubjectName, req.Category),
		Description: fmt.Sprintf("Generating video about %s's career in %s...", req.SubjectName, req.Category),
		Status:      store.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.records.PutRecord(ctx, record); err != nil {
		return store.VideoRecord{}, fmt.Errorf("write processing record: %w", err)
	}
	return record, nil
}

// Run executes the generation stages for a record created by Begin. On
// any stage failure the record is marked failed with the error message
// and the error is returned to the caller.
func (p *Pipeline) Run(ctx context.Context, id string, req Request) (Result, error) {
	record, err := p.records.GetRecord(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("load record %s: %w", id, err)
	}

	result, err := p.generate(ctx, id, req)
	if err != nil {
		p.markFailed(ctx, record, err)
		return Result{}, err
	}

	record.Status = store.StatusCompleted
	record.Description = preview(result.Script)
	record.URL = result.VideoURL
	record.UpdatedAt = p.now().UTC()
	if err := p.records.PutRecord(ctx, record); err != nil {
		return Result{}, fmt.Errorf("write completed record: %w", err)
	}

	slog.Info("Video generation completed", "video_id", id, "url", result.VideoURL)
	return result, nil
}

func (p *Pipeline) generate(ctx context.Context, id string, req Request) (Result, error) {
	slog.Info("Generating script", "video_id", id, "subject", req.SubjectName, "category", req.Category)
	script, err := p.scripts.GenerateScript(ctx, req.SubjectName, req.Category, req.AdditionalInfo)
	if err != nil {
		return Result{}, &GenerationError{Stage: "script", Err: err}
	}

	moments, err := p.scripts.ExtractKeyMoments(ctx, req.SubjectName, req.Category, script, p.opts.ImageCount)
	if err != nil {
		return Result{}, &GenerationError{Stage: "moments", Err: err}
	}

	imageURLs := p.images.SourceImages(ctx, req.SubjectName, req.Category, moments)

	slog.Info("Synthesizing narration", "video_id", id, "script_len", len(script))
	audioURL, err := p.speech.Synthesize(ctx, script, id)
	if err != nil {
		return Result{}, &GenerationError{Stage: "speech", Err: err}
	}

	if err := p.waiter.WaitReady(ctx, audioURL, p.opts.ReadyAttempts, p.opts.ReadyDelay); err != nil {
		return Result{}, &GenerationError{Stage: "audio readiness", Err: err}
	}

	videoURL, err := p.video.Compose(ctx, video.ComposeRequest{
		ImageURLs: imageURLs,
		AudioURL:  audioURL,
		Script:    script,
		VideoID:   id,
	})
	if err != nil {
		return Result{}, &GenerationError{Stage: "compose", Err: err}
	}

	return Result{VideoID: id, Script: script, VideoURL: videoURL}, nil
}

func (p *Pipeline) markFailed(ctx context.Context, record store.VideoRecord, genErr error) {
	record.Status = store.StatusFailed
	record.Description = genErr.Error()
	record.UpdatedAt = p.now().UTC()
	if err := p.records.PutRecord(ctx, record); err != nil {
		slog.Error("Could not write failed record", "video_id", record.ID, "error", err)
	}
	slog.Error("Video generation failed", "video_id", record.ID, "error", genErr)
}

// preview truncates on rune boundaries so accented names never leave
// broken UTF-8 in the description.
func preview(script string) string {
	runes := []rune(script)
	if len(runes) <= descriptionPreviewLen {
		return script + "..."
	}
	return string(runes[:descriptionPreviewLen]) + "..."
}
