package speech

import (
	"context"
	"fmt"
	"log/slog"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Long-audio synthesis is only offered in a handful of locations.
const synthesisLocation = "us-central1"

type GoogleOptions struct {
	Project  string
	Bucket   string
	Voice    string
	Language string
}

// GoogleSynthesizer dispatches narration to the Cloud Text-to-Speech
// long-audio API, which writes the finished WAV directly into the
// bucket. The returned URL becomes fetchable once the job completes.
type GoogleSynthesizer struct {
	client *texttospeech.TextToSpeechLongAudioSynthesizeClient
	opts   GoogleOptions
}

func NewGoogleSynthesizer(ctx context.Context, opts GoogleOptions, clientOpts ...option.ClientOption) (*GoogleSynthesizer, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("speech: project is required")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("speech: bucket is required")
	}

	client, err := texttospeech.NewTextToSpeechLongAudioSynthesizeClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	return &GoogleSynthesizer{client: client, opts: opts}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, id string) (string, error) {
	outputURI := fmt.Sprintf("gs://%s/audio/%s.wav", g.opts.Bucket, id)

	req := &texttospeechpb.SynthesizeLongAudioRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", g.opts.Project, synthesisLocation),
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_LINEAR16,
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.opts.Language,
			Name:         g.opts.Voice,
		},
		OutputGcsUri: outputURI,
	}

	if _, err := g.client.SynthesizeLongAudio(ctx, req); err != nil {
		return "", fmt.Errorf("failed to start speech synthesis: %w", err)
	}

	slog.Debug("speech synthesis dispatched", "id", id, "output", outputURI)

	return fmt.Sprintf("https://storage.googleapis.com/%s/audio/%s.wav", g.opts.Bucket, id), nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}
