package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yungbote/stockmedia-backend/internal/platform/ctxutil"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// Tools wraps the ffmpeg binary.
type Tools interface {
	AssertReady(ctx context.Context) error
	// ConvertToWav resamples any ffmpeg-readable input to a PCM wav file.
	ConvertToWav(ctx context.Context, inputPath, outPath string, opts WavOptions) (string, error)
	// NewWorkDir creates a unique directory under the work root. The returned
	// cleanup removes it.
	NewWorkDir(prefix string) (string, func(), error)
}

type WavOptions struct {
	SampleRateHz int
	Channels     int
}

type ToolsConfig struct {
	FFmpegPath string
	WorkRoot   string
	Timeout    time.Duration
}

type tools struct {
	log            *logger.Logger
	ffmpegPath     string
	workRoot       string
	defaultTimeout time.Duration
}

func New(log *logger.Logger, cfg ToolsConfig) Tools {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = filepath.Join(os.TempDir(), "stockmedia-transcription")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &tools{
		log:            log.With("service", "MediaTools"),
		ffmpegPath:     cfg.FFmpegPath,
		workRoot:       cfg.WorkRoot,
		defaultTimeout: cfg.Timeout,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(m.ffmpegPath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", m.ffmpegPath, err)
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) NewWorkDir(prefix string) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	dir, err := os.MkdirTemp(m.workRoot, prefix+"-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("create work dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			m.log.Warn("work dir cleanup failed", "dir", dir, "error", err)
		}
	}
	return dir, cleanup, nil
}

func (m *tools) ConvertToWav(ctx context.Context, inputPath, outPath string, opts WavOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	if inputPath == "" {
		return "", fmt.Errorf("inputPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffmpegPath, wavArgs(inputPath, outPath, opts)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg convert failed: %w; out=%s", err, tail(out, 2048))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("ffmpeg produced no output at %s: %w", outPath, err)
	}
	return outPath, nil
}

func wavArgs(inputPath, outPath string, opts WavOptions) []string {
	sr := opts.SampleRateHz
	if sr <= 0 {
		sr = 16000
	}
	ch := opts.Channels
	if ch <= 0 {
		ch = 1
	}
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ar", strconv.Itoa(sr),
		"-ac", strconv.Itoa(ch),
		"-f", "wav",
		outPath,
	}
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return "..." + string(b[len(b)-n:])
}
