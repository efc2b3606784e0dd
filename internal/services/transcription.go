package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
	pkgerrors "github.com/yungbote/stockmedia-backend/internal/pkg/errors"
	"github.com/yungbote/stockmedia-backend/internal/pkg/httpx"
	"github.com/yungbote/stockmedia-backend/internal/platform/localmedia"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// Recognizer turns a 16 kHz mono wav file into timed tokens.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, wavPath string) ([]transcription.Token, error)
}

// ObjectOpener reads gs:// objects.
type ObjectOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

type TranscriptionConfig struct {
	HTTPClient       *http.Client
	FetchRetries     int
	MaxDownloadBytes int64
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, audioURL string) (*transcription.CaptionTrack, error)
}

type transcriptionService struct {
	log        *logger.Logger
	cfg        TranscriptionConfig
	tools      localmedia.Tools
	recognizer Recognizer
	objects    ObjectOpener
}

func NewTranscriptionService(log *logger.Logger, cfg TranscriptionConfig, tools localmedia.Tools, recognizer Recognizer, objects ObjectOpener) TranscriptionService {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.MaxDownloadBytes <= 0 {
		cfg.MaxDownloadBytes = 512 << 20
	}
	return &transcriptionService{
		log:        log.With("service", "TranscriptionService"),
		cfg:        cfg,
		tools:      tools,
		recognizer: recognizer,
		objects:    objects,
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audioURL string) (*transcription.CaptionTrack, error) {
	u, err := parseAudioURL(audioURL)
	if err != nil {
		return nil, err
	}
	log := s.log.WithContext(ctx).With("recognizer", s.recognizer.Name())
	start := time.Now()

	dir, cleanup, err := s.tools.NewWorkDir("transcribe")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrUpstream, err)
	}
	defer cleanup()

	inputPath := filepath.Join(dir, "source"+audioExt(u))
	if err := s.fetch(ctx, u, inputPath); err != nil {
		return nil, fmt.Errorf("%w: download audio: %w", pkgerrors.ErrUpstream, err)
	}

	wavPath, err := s.tools.ConvertToWav(ctx, inputPath, filepath.Join(dir, "input.wav"), localmedia.WavOptions{SampleRateHz: 16000, Channels: 1})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrUpstream, err)
	}

	tokens, err := s.recognizer.Recognize(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("%w: recognize: %w", pkgerrors.ErrUpstream, err)
	}

	track := buildCaptionTrack(combineTokens(tokens, CombineWindowMs))
	log.Info("Transcription complete",
		"tokens", len(tokens),
		"captions", len(track.Captions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return track, nil
}

func parseAudioURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: audioUrl required", pkgerrors.ErrInvalidArgument)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: audioUrl: %w", pkgerrors.ErrInvalidArgument, err)
	}
	switch u.Scheme {
	case "http", "https", "gs":
	default:
		return nil, fmt.Errorf("%w: unsupported audioUrl scheme %q", pkgerrors.ErrInvalidArgument, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: audioUrl has no host", pkgerrors.ErrInvalidArgument)
	}
	return u, nil
}

func audioExt(u *url.URL) string {
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 6 {
		return ".audio"
	}
	return ext
}

func (s *transcriptionService) fetch(ctx context.Context, u *url.URL, dst string) error {
	if u.Scheme == "gs" {
		if s.objects == nil {
			return fmt.Errorf("gs:// audio not supported: no object reader configured")
		}
		rc, err := s.objects.Open(ctx, u.String())
		if err != nil {
			return err
		}
		defer rc.Close()
		return s.writeFile(dst, rc)
	}

	policy := httpx.RetryPolicy{
		MaxRetries:  s.cfg.FetchRetries,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			s.log.Warn("Audio download retry", "attempt", attempt, "sleep_ms", sleep.Milliseconds(), "error", err)
		},
	}
	return httpx.Do(ctx, policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		resp, err := s.cfg.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &httpx.StatusError{Status: resp.StatusCode, URL: u.Redacted(), Body: string(body)}
		}
		return s.writeFile(dst, resp.Body)
	})
}

func (s *transcriptionService) writeFile(dst string, r io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, io.LimitReader(r, s.cfg.MaxDownloadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > s.cfg.MaxDownloadBytes {
		return fmt.Errorf("audio exceeds %d bytes", s.cfg.MaxDownloadBytes)
	}
	if n == 0 {
		return fmt.Errorf("audio is empty")
	}
	return nil
}
