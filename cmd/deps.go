package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sportsreels/internal/fetch"
	"sportsreels/internal/imagesearch"
	"sportsreels/internal/reel"
	"sportsreels/internal/script"
	"sportsreels/internal/speech"
	"sportsreels/internal/store"
	"sportsreels/internal/video"
	"sportsreels/pkg/config"
	"sportsreels/pkg/prompts"
)

type deps struct {
	cfg      *config.Config
	records  store.Store
	pipeline *reel.Pipeline
}

// buildDeps wires the whole pipeline from config. Without a bucket it
// falls back to in-process storage and a silent speech stub so the tool
// still works on a laptop with only a Groq key.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	scripts, err := script.NewGroqClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
	if err != nil {
		return nil, fmt.Errorf("build script generator: %w", err)
	}

	searcher := imagesearch.NewClient(cfg.SerpAPIKey, imagesearch.Filters{
		MinWidth:  cfg.Images.MinWidth,
		MinHeight: cfg.Images.MinHeight,
		MaxAspect: cfg.Images.MaxAspect,
	})
	sourcer := imagesearch.NewSourcer(searcher, cfg.Video.ImageCount)

	var (
		records     store.Store
		synthesizer speech.Synthesizer
	)
	if cfg.GCSBucket != "" {
		gcs, err := store.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("build video store: %w", err)
		}
		records = gcs

		tts, err := speech.NewGoogleSynthesizer(ctx, speech.GoogleOptions{
			Project:  cfg.Project,
			Bucket:   cfg.GCSBucket,
			Voice:    cfg.Speech.Voice,
			Language: cfg.Speech.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("build synthesizer: %w", err)
		}
		synthesizer = tts
	} else {
		slog.Warn("No bucket configured, using in-memory storage and stub speech")
		records = store.NewMemoryStore()
		synthesizer = speech.NewStubSynthesizer(filepath.Join(os.TempDir(), "sportsreels-local"))
	}

	fetcher := fetch.NewFetcher()
	composer := video.NewComposer(fetcher, records, video.ComposerOptions{
		Resolution:    cfg.Video.Resolution,
		FallbackAudio: cfg.Video.FallbackAudio,
	})

	pipeline := reel.NewPipeline(scripts, sourcer, synthesizer, fetcher, composer, records,
		reel.PipelineOptions{
			ImageCount:    cfg.Video.ImageCount,
			ReadyAttempts: cfg.Speech.ReadyAttempts,
			ReadyDelay:    time.Duration(cfg.Speech.ReadyDelay * float64(time.Second)),
		})

	return &deps{cfg: cfg, records: records, pipeline: pipeline}, nil
}
