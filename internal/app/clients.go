package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/stockmedia-backend/internal/platform/embedding"
	"github.com/yungbote/stockmedia-backend/internal/platform/gcp"
	"github.com/yungbote/stockmedia-backend/internal/platform/localmedia"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
	"github.com/yungbote/stockmedia-backend/internal/services"
)

// bootstrapper prepares a recognizer's local assets (the whisper model).
type bootstrapper interface {
	EnsureModel(ctx context.Context) error
	AssertReady(ctx context.Context) error
}

type Clients struct {
	Embedder   embedding.Embedder
	Redis      *goredis.Client
	MediaTools localmedia.Tools
	Recognizer services.Recognizer
	Objects    *gcp.ObjectStore

	closers []func() error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Embedding cache (optional)
	var opts []embedding.AdapterOption
	if cfg.Redis.Addr != "" {
		cache, rdb, err := embedding.NewRedisCache(ctx, log, cfg.Redis.Addr, cfg.Redis.CacheTTL, cfg.Embedding)
		if err != nil {
			log.Warn("Embedding cache disabled", "error", err)
		} else {
			c.Redis = rdb
			c.closers = append(c.closers, rdb.Close)
			opts = append(opts, embedding.WithCache(cache))
		}
	}

	// Embeddings
	httpClient := &http.Client{Timeout: cfg.Embedding.Timeout + 5*time.Second}
	emb, err := embedding.New(ctx, log, cfg.Embedding, httpClient, opts...)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init embedding provider: %w", err)
	}
	c.Embedder = emb

	// Transcription
	c.MediaTools = localmedia.New(log, localmedia.ToolsConfig{
		FFmpegPath: cfg.Transcription.FFmpegBin,
		WorkRoot:   cfg.Transcription.WorkDir,
		Timeout:    cfg.Transcription.Timeout,
	})
	c.Objects = gcp.NewObjectStore(log, cfg.Storage)
	c.closers = append(c.closers, c.Objects.Close)

	switch cfg.Transcription.Recognizer {
	case RecognizerGCPSpeech:
		sr, err := gcp.NewSpeechRecognizer(ctx, log, gcp.SpeechConfig{
			LanguageCode:  cfg.Transcription.SpeechLanguage,
			StagingBucket: cfg.Transcription.SpeechStaging,
		}, c.Objects)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init speech recognizer: %w", err)
		}
		c.Recognizer = sr
		c.closers = append(c.closers, sr.Close)
	default:
		w := cfg.Transcription.Whisper
		c.Recognizer = localmedia.NewWhisper(log, localmedia.WhisperConfig{
			BinPath: w.Bin,
			Dir:     w.Dir,
			Model:   w.Model,
			Threads: w.Threads,
		})
	}

	return c, nil
}

// PrepareTranscription checks ffmpeg and, for whisper, downloads the model
// when it is missing or truncated.
func (c Clients) PrepareTranscription(ctx context.Context) error {
	if err := c.MediaTools.AssertReady(ctx); err != nil {
		return err
	}
	b, ok := c.Recognizer.(bootstrapper)
	if !ok {
		return nil
	}
	if err := b.EnsureModel(ctx); err != nil {
		return err
	}
	return b.AssertReady(ctx)
}

func (c Clients) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}
