package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/stockmedia-backend/internal/data/db"
	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
	"github.com/yungbote/stockmedia-backend/internal/http/middleware"
	"github.com/yungbote/stockmedia-backend/internal/platform/embedding"
	"github.com/yungbote/stockmedia-backend/internal/platform/envutil"
	"github.com/yungbote/stockmedia-backend/internal/platform/gcp"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

const (
	RecognizerWhisper   = "whisper"
	RecognizerGCPSpeech = "gcp_speech"
)

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type WhisperConfig struct {
	Bin     string `yaml:"bin"`
	Dir     string `yaml:"dir"`
	Model   string `yaml:"model"`
	Threads int    `yaml:"threads"`
}

type TranscriptionConfig struct {
	Recognizer       string        `yaml:"recognizer"`
	FFmpegBin        string        `yaml:"ffmpeg_bin"`
	WorkDir          string        `yaml:"work_dir"`
	Timeout          time.Duration `yaml:"timeout"`
	FetchRetries     int           `yaml:"fetch_retries"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes"`
	SpeechLanguage   string        `yaml:"speech_language"`
	SpeechStaging    string        `yaml:"speech_staging_bucket"`
	Whisper          WhisperConfig `yaml:"whisper"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	ServiceName     string        `yaml:"service_name"`
	Environment     string        `yaml:"environment"`
	Version         string        `yaml:"version"`
	Port            string        `yaml:"port"`
	LogMode         string        `yaml:"log_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"cors_allowed_origins"`
	SearchLimit     int           `yaml:"search_limit"`

	Postgres      db.PostgresConfig   `yaml:"postgres"`
	Embedding     embedding.Config    `yaml:"embedding"`
	Redis         RedisConfig         `yaml:"redis"`
	Storage       gcp.StorageConfig   `yaml:"object_storage"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Otel          OtelConfig          `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		ServiceName:     "stockmedia",
		Environment:     "development",
		Port:            "3001",
		LogMode:         "development",
		ShutdownTimeout: 15 * time.Second,
		AllowedOrigins:  middleware.DefaultAllowedOrigins,
		SearchLimit:     domain.DefaultSearchLimit,
		Postgres: db.PostgresConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "stockmedia",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Embedding: embedding.Config{
			Provider:   embedding.ProviderOpenAI,
			Dimensions: domain.EmbeddingDimensions,
			Timeout:    embedding.DefaultTimeout,
			MaxRetries: embedding.DefaultMaxRetries,
		},
		Redis: RedisConfig{CacheTTL: 24 * time.Hour},
		Transcription: TranscriptionConfig{
			Recognizer:       RecognizerWhisper,
			FFmpegBin:        "ffmpeg",
			WorkDir:          filepath.Join(os.TempDir(), "stockmedia-transcription"),
			Timeout:          5 * time.Minute,
			FetchRetries:     2,
			MaxDownloadBytes: 512 << 20,
			SpeechLanguage:   "en-US",
			Whisper: WhisperConfig{
				Bin:   "whisper-cli",
				Dir:   "whisper.cpp",
				Model: "medium.en",
			},
		},
		Otel: OtelConfig{SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, then the YAML file named by CONFIG_PATH (if
// any), then environment variables.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := envutil.String("CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	applyEnv(&cfg)
	// The model default depends on the final provider.
	if strings.TrimSpace(cfg.Embedding.Model) == "" {
		cfg.Embedding.Model = embedding.DefaultModelFor(cfg.Embedding.Provider)
	}
	storage, err := cfg.Storage.Resolve()
	if err != nil {
		return Config{}, err
	}
	cfg.Storage = storage
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.SearchLimit = envutil.Int("SEARCH_DEFAULT_LIMIT", cfg.SearchLimit)

	pg := &cfg.Postgres
	pg.DSN = envutil.String("POSTGRES_DSN", pg.DSN)
	pg.Host = envutil.String("POSTGRES_HOST", pg.Host)
	pg.Port = envutil.String("POSTGRES_PORT", pg.Port)
	pg.User = envutil.String("POSTGRES_USER", pg.User)
	pg.Password = envutil.String("POSTGRES_PASSWORD", pg.Password)
	pg.Name = envutil.String("POSTGRES_NAME", pg.Name)
	pg.SSLMode = envutil.String("POSTGRES_SSLMODE", pg.SSLMode)
	pg.MaxOpenConns = envutil.Int("POSTGRES_MAX_OPEN_CONNS", pg.MaxOpenConns)
	pg.MaxIdleConns = envutil.Int("POSTGRES_MAX_IDLE_CONNS", pg.MaxIdleConns)

	emb := &cfg.Embedding
	emb.Provider = strings.ToLower(envutil.String("EMBEDDING_PROVIDER", emb.Provider))
	emb.Model = envutil.String("EMBEDDING_MODEL", emb.Model)
	emb.Dimensions = envutil.Int("EMBEDDING_DIMENSIONS", emb.Dimensions)
	emb.Timeout = envutil.Duration("EMBEDDING_TIMEOUT", emb.Timeout)
	emb.MaxRetries = envutil.Int("EMBEDDING_MAX_RETRIES", emb.MaxRetries)
	emb.APIKey = envutil.String("OPENAI_API_KEY", emb.APIKey)
	emb.BaseURL = envutil.String("OPENAI_BASE_URL", emb.BaseURL)
	emb.APIVersion = envutil.String("OPENAI_API_VERSION", emb.APIVersion)
	emb.GoogleAPIKey = envutil.String("GOOGLE_API_KEY", emb.GoogleAPIKey)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.CacheTTL = envutil.Duration("EMBEDDING_CACHE_TTL", cfg.Redis.CacheTTL)

	cfg.Storage.Mode = gcp.StorageMode(envutil.String("OBJECT_STORAGE_MODE", string(cfg.Storage.Mode)))
	cfg.Storage.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Storage.EmulatorHost)

	tr := &cfg.Transcription
	tr.Recognizer = strings.ToLower(envutil.String("TRANSCRIPTION_RECOGNIZER", tr.Recognizer))
	tr.FFmpegBin = envutil.String("FFMPEG_BIN", tr.FFmpegBin)
	tr.WorkDir = envutil.String("TRANSCRIPTION_WORK_DIR", tr.WorkDir)
	tr.Timeout = envutil.Duration("TRANSCRIPTION_TIMEOUT", tr.Timeout)
	tr.FetchRetries = envutil.Int("TRANSCRIPTION_FETCH_RETRIES", tr.FetchRetries)
	tr.SpeechLanguage = envutil.String("SPEECH_LANGUAGE_CODE", tr.SpeechLanguage)
	tr.SpeechStaging = envutil.String("SPEECH_STAGING_BUCKET", tr.SpeechStaging)
	tr.Whisper.Bin = envutil.String("WHISPER_BIN", tr.Whisper.Bin)
	tr.Whisper.Dir = envutil.String("WHISPER_DIR", tr.Whisper.Dir)
	tr.Whisper.Model = envutil.String("WHISPER_MODEL", tr.Whisper.Model)
	tr.Whisper.Threads = envutil.Int("WHISPER_THREADS", tr.Whisper.Threads)

	ot := &cfg.Otel
	ot.Enabled = envutil.Bool("OTEL_ENABLED", ot.Enabled)
	ot.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ot.Endpoint)
	ot.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ot.Headers)
	ot.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", ot.Insecure)
	ot.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", ot.SampleRatio)
}

func (c Config) validate() error {
	if c.Embedding.Dimensions != domain.EmbeddingDimensions {
		return fmt.Errorf("EMBEDDING_DIMENSIONS=%d does not match the schema width %d", c.Embedding.Dimensions, domain.EmbeddingDimensions)
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	switch c.Transcription.Recognizer {
	case RecognizerWhisper, RecognizerGCPSpeech:
	default:
		return fmt.Errorf("unknown TRANSCRIPTION_RECOGNIZER %q", c.Transcription.Recognizer)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}
