package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
	"github.com/yungbote/stockmedia-backend/internal/platform/ctxutil"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// MaxInlineAudioBytes is the largest audio Cloud Speech accepts as inline
// request content. Longer audio must be read from a gs:// URI.
const MaxInlineAudioBytes = 10 << 20

var ErrAudioTooLarge = errors.New("audio too large for inline speech recognition")

type SpeechConfig struct {
	LanguageCode    string
	Model           string
	SampleRateHertz int
	// StagingBucket receives audio over MaxInlineAudioBytes. Empty means
	// such audio is rejected.
	StagingBucket string
}

// AudioStager puts audio where Cloud Speech can read it by URI.
type AudioStager interface {
	Upload(ctx context.Context, bucket, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, uri string) error
}

// SpeechRecognizer recognizes 16 kHz mono LINEAR16 wav files with Cloud Speech
// and returns one token per word.
type SpeechRecognizer struct {
	log        *logger.Logger
	client     *speech.Client
	cfg        SpeechConfig
	stager     AudioStager
	maxRetries int
	timeout    time.Duration

	inlineLimit   int64
	stagedTimeout time.Duration
}

// NewSpeechRecognizer takes an optional stager; without one (or without
// cfg.StagingBucket) only audio up to MaxInlineAudioBytes is accepted.
func NewSpeechRecognizer(ctx context.Context, log *logger.Logger, cfg SpeechConfig, stager AudioStager) (*SpeechRecognizer, error) {
	c, err := speech.NewClient(ctxutil.Default(ctx), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SampleRateHertz <= 0 {
		cfg.SampleRateHertz = 16000
	}
	cfg.StagingBucket = strings.TrimSpace(cfg.StagingBucket)
	return &SpeechRecognizer{
		log:           log.With("service", "gcp.SpeechRecognizer"),
		client:        c,
		cfg:           cfg,
		stager:        stager,
		maxRetries:    4,
		timeout:       10 * time.Minute,
		inlineLimit:   MaxInlineAudioBytes,
		stagedTimeout: 30 * time.Minute,
	}, nil
}

func (s *SpeechRecognizer) Name() string { return "gcp_speech" }

func (s *SpeechRecognizer) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SpeechRecognizer) Recognize(ctx context.Context, wavPath string) ([]transcription.Token, error) {
	fi, err := os.Stat(wavPath)
	if err != nil {
		return nil, fmt.Errorf("stat wav: %w", err)
	}
	if fi.Size() == 0 {
		return nil, nil
	}
	timeout := s.timeout
	if fi.Size() > s.inlineLimit {
		timeout = s.stagedTimeout
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), timeout)
	defer cancel()

	audio, cleanup, err := s.recognitionAudio(ctx, wavPath, fi.Size())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(s.cfg.SampleRateHertz),
			AudioChannelCount:          1,
			LanguageCode:               s.cfg.LanguageCode,
			Model:                      s.cfg.Model,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: audio,
	}

	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	return wordTokens(resp), nil
}

// recognitionAudio sends small files inline and stages larger ones in
// StagingBucket. The returned cleanup deletes the staged object.
func (s *SpeechRecognizer) recognitionAudio(ctx context.Context, wavPath string, size int64) (*speechpb.RecognitionAudio, func(), error) {
	if size <= s.inlineLimit {
		b, err := os.ReadFile(wavPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read wav: %w", err)
		}
		return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: b}}, func() {}, nil
	}
	if s.stager == nil || s.cfg.StagingBucket == "" {
		return nil, nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit and no speech staging bucket is configured", ErrAudioTooLarge, size, s.inlineLimit)
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	object := "speech-staging/" + uuid.NewString() + ".wav"
	uri, err := s.stager.Upload(ctx, s.cfg.StagingBucket, object, "audio/wav", f)
	if err != nil {
		return nil, nil, fmt.Errorf("stage audio: %w", err)
	}
	s.log.WithContext(ctx).Debug("speech audio staged", "uri", uri, "bytes", size)

	cleanup := func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.stager.Delete(dctx, uri); err != nil {
			s.log.WithContext(dctx).Warn("staged speech audio not deleted", "uri", uri, "error", err.Error())
		}
	}
	return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri}}, cleanup, nil
}

// wordTokens flattens the first alternative of each result into word tokens.
// Each word carries a leading space, as whisper tokens at word boundaries do.
func wordTokens(resp *speechpb.LongRunningRecognizeResponse) []transcription.Token {
	if resp == nil {
		return nil
	}
	var out []transcription.Token
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		for _, w := range r.Alternatives[0].Words {
			if w == nil || strings.TrimSpace(w.Word) == "" {
				continue
			}
			out = append(out, transcription.Token{
				Text:    " " + strings.TrimSpace(w.Word),
				StartMs: durToMs(w.StartTime),
			})
		}
	}
	return out
}

func durToMs(d *durationpb.Duration) int64 {
	if d == nil {
		return 0
	}
	return int64(math.Round(float64(d.Seconds)*1000 + float64(d.Nanos)/1e6))
}

func (s *SpeechRecognizer) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.WithContext(ctx).Warn("speech request retrying", "attempt", attempt+1, "code", code.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return nil, last
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 10*time.Second)
	}
	return nil, last
}
