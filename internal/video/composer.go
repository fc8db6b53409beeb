package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"
	stderrTailBytes    = 2000
)

// ErrUploadFailed wraps blob-store failures after a successful encode.
var ErrUploadFailed = errors.New("upload failed")

// CompositionError reports a failed encoder invocation with the tail of
// its output for diagnosis.
type CompositionError struct {
	Stderr string
	Err    error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("ffmpeg failed: %v: %s", e.Err, e.Stderr)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// Downloader pulls a remote artifact to local scratch storage.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// Uploader publishes the finished video and returns its public URL.
type Uploader interface {
	UploadVideo(ctx context.Context, id, localPath string) (string, error)
}

// ComposeRequest carries one run's media inputs.
type ComposeRequest struct {
	ImageURLs []string
	AudioURL  string
	Script    string
	VideoID   string
}

type ComposerOptions struct {
	Resolution    string  // "1080x604"
	FallbackAudio float64 // assumed audio seconds when ffprobe fails
	FFmpegPath    string
	FFprobePath   string
}

// Composer turns a list of image URLs and one audio URL into a single MP4:
// download, scale, concat with hard cuts, mux against the narration, upload.
type Composer struct {
	fetcher       Downloader
	uploader      Uploader
	width         int
	height        int
	fallbackAudio float64
	ffmpegPath    string
	ffprobePath   string
}

func NewComposer(fetcher Downloader, uploader Uploader, opts ComposerOptions) *Composer {
	width, height := parseResolution(opts.Resolution)

	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}
	ffprobePath := opts.FFprobePath
	if ffprobePath == "" {
		ffprobePath = defaultFFprobePath
	}
	fallback := opts.FallbackAudio
	if fallback == 0 {
		fallback = 60
	}

	return &Composer{
		fetcher:       fetcher,
		uploader:      uploader,
		width:         width,
		height:        height,
		fallbackAudio: fallback,
		ffmpegPath:    ffmpegPath,
		ffprobePath:   ffprobePath,
	}
}

func parseResolution(res string) (int, int) {
	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 1080, 604
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 1080, 604
	}
	return w, h
}

// Compose runs the whole media stage for one video. All scratch files live
// in a directory owned by this run and are removed on every exit path.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	if len(req.ImageURLs) == 0 {
		return "", fmt.Errorf("compose %s: no images", req.VideoID)
	}

	scratchDir := filepath.Join(os.TempDir(), "sportsreels-"+req.VideoID)
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratchDir) }()

	imagePaths, err := c.downloadImages(ctx, req.ImageURLs, scratchDir)
	if err != nil {
		return "", err
	}

	audioPath := filepath.Join(scratchDir, "audio.wav")
	if err := c.fetcher.Download(ctx, req.AudioURL, audioPath); err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	audioDuration, err := probeDuration(ctx, c.ffprobePath, audioPath)
	if err != nil {
		slog.Warn("Could not probe audio duration, using fallback", "video_id", req.VideoID, "fallback", c.fallbackAudio, "error", err)
		audioDuration = c.fallbackAudio
	}

	window, err := ImageWindow(audioDuration, len(imagePaths))
	if err != nil {
		return "", fmt.Errorf("compute image window: %w", err)
	}

	outputPath := filepath.Join(scratchDir, req.VideoID+".mp4")
	if err := c.encode(ctx, imagePaths, audioPath, outputPath, window); err != nil {
		return "", err
	}

	url, err := c.uploader.UploadVideo(ctx, req.VideoID, outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	slog.Info("Video composed", "video_id", req.VideoID, "duration", audioDuration, "images", len(imagePaths), "url", url)
	return url, nil
}

func (c *Composer) downloadImages(ctx context.Context, urls []string, scratchDir string) ([]string, error) {
	paths := make([]string, len(urls))
	for i, url := range urls {
		path := filepath.Join(scratchDir, fmt.Sprintf("image_%d.jpg", i))
		if err := c.fetcher.Download(ctx, url, path); err != nil {
			return nil, fmt.Errorf("download image %d: %w", i, err)
		}
		paths[i] = path
	}
	return paths, nil
}

func (c *Composer) encode(ctx context.Context, imagePaths []string, audioPath, outputPath string, window float64) error {
	graph, err := NewSlideshowGraph(len(imagePaths), c.width, c.height)
	if err != nil {
		return err
	}
	if err := graph.Validate(len(imagePaths)); err != nil {
		return err
	}

	args := buildEncodeArgs(imagePaths, audioPath, outputPath, window, graph)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CompositionError{Stderr: tail(string(output), stderrTailBytes), Err: err}
	}

	return nil
}

// buildEncodeArgs assembles the ffmpeg invocation: each image looped for
// its window, audio as the last input, output clamped to the shorter of
// video and audio so rounding drift never leaves frozen trailing frames.
func buildEncodeArgs(imagePaths []string, audioPath, outputPath string, window float64, graph *FilterGraph) []string {
	args := []string{"-y"}

	for _, imagePath := range imagePaths {
		args = append(args,
			"-loop", "1",
			"-t", fmt.Sprintf("%.2f", window),
			"-i", imagePath,
		)
	}

	args = append(args, "-i", audioPath)

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "["+graph.Output()+"]",
		"-map", fmt.Sprintf("%d:a", len(imagePaths)),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	)

	return args
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
