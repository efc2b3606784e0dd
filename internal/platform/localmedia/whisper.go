package localmedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
	"github.com/yungbote/stockmedia-backend/internal/pkg/httpx"
	"github.com/yungbote/stockmedia-backend/internal/platform/ctxutil"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

const defaultModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// knownModelSizes are the byte sizes of the published ggml model files.
var knownModelSizes = map[string]int64{
	"medium.en": 1533774781,
}

type WhisperConfig struct {
	BinPath      string
	Dir          string
	Model        string
	Language     string
	Threads      int
	Timeout      time.Duration
	ModelBaseURL string
	HTTPClient   *http.Client
}

// Whisper runs the whisper.cpp CLI with token level timestamps.
type Whisper struct {
	log *logger.Logger
	cfg WhisperConfig
}

func NewWhisper(log *logger.Logger, cfg WhisperConfig) *Whisper {
	if cfg.BinPath == "" {
		cfg.BinPath = "whisper-cli"
	}
	if cfg.Dir == "" {
		cfg.Dir = "whisper.cpp"
	}
	if cfg.Model == "" {
		cfg.Model = "medium.en"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	if cfg.ModelBaseURL == "" {
		cfg.ModelBaseURL = defaultModelBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Whisper{log: log.With("service", "Whisper", "model", cfg.Model), cfg: cfg}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) ModelPath() string {
	return filepath.Join(w.cfg.Dir, "models", "ggml-"+w.cfg.Model+".bin")
}

// binary resolves the CLI: a path inside the whisper dir wins over PATH.
func (w *Whisper) binary() (string, error) {
	if filepath.IsAbs(w.cfg.BinPath) || strings.ContainsRune(w.cfg.BinPath, filepath.Separator) {
		if _, err := os.Stat(w.cfg.BinPath); err != nil {
			return "", fmt.Errorf("whisper binary %q: %w", w.cfg.BinPath, err)
		}
		return w.cfg.BinPath, nil
	}
	local := filepath.Join(w.cfg.Dir, w.cfg.BinPath)
	if fi, err := os.Stat(local); err == nil && !fi.IsDir() {
		return local, nil
	}
	p, err := exec.LookPath(w.cfg.BinPath)
	if err != nil {
		return "", fmt.Errorf("missing whisper binary %q (not in %s or PATH): %w", w.cfg.BinPath, w.cfg.Dir, err)
	}
	return p, nil
}

func (w *Whisper) AssertReady(ctx context.Context) error {
	if _, err := w.binary(); err != nil {
		return err
	}
	ok, err := w.modelValid()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("whisper model missing or incomplete at %s", w.ModelPath())
	}
	return nil
}

func (w *Whisper) modelValid() (bool, error) {
	fi, err := os.Stat(w.ModelPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if want, ok := knownModelSizes[w.cfg.Model]; ok {
		return fi.Size() == want, nil
	}
	return fi.Size() > 0, nil
}

// EnsureModel downloads the ggml model when it is absent or has the wrong size.
func (w *Whisper) EnsureModel(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	ok, err := w.modelValid()
	if err != nil {
		return fmt.Errorf("stat whisper model: %w", err)
	}
	if ok {
		w.log.Info("whisper model present", "path", w.ModelPath())
		return nil
	}
	w.log.Info("downloading whisper model", "path", w.ModelPath())
	return w.downloadModel(ctx)
}

func (w *Whisper) downloadModel(ctx context.Context) error {
	dst := w.ModelPath()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir models dir: %w", err)
	}
	url := strings.TrimRight(w.cfg.ModelBaseURL, "/") + "/ggml-" + w.cfg.Model + ".bin"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := w.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("download whisper model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &httpx.StatusError{Status: resp.StatusCode, URL: url}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".ggml-*.part")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write whisper model: %w", err)
	}
	if want, ok := knownModelSizes[w.cfg.Model]; ok && n != want {
		return fmt.Errorf("whisper model size mismatch: got %d bytes, want %d", n, want)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("install whisper model: %w", err)
	}
	w.log.Info("whisper model installed", "path", dst, "bytes", n)
	return nil
}

// Recognize transcribes a 16 kHz mono wav and returns one token per output
// segment. Output files are written next to the input.
func (w *Whisper) Recognize(ctx context.Context, wavPath string) ([]transcription.Token, error) {
	ctx = ctxutil.Default(ctx)
	bin, err := w.binary()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	base := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	cmd := exec.CommandContext(ctx, bin, w.args(wavPath, base)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper failed: %w; out=%s", err, tail(out, 2048))
	}

	f, err := os.Open(base + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper output: %w", err)
	}
	defer f.Close()
	return parseWhisperJSON(f)
}

func (w *Whisper) args(wavPath, outBase string) []string {
	args := []string{
		"-m", w.ModelPath(),
		"-f", wavPath,
		"-l", w.cfg.Language,
		"-ml", "1",
		"-sow",
		"-oj",
		"-of", outBase,
	}
	if w.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.cfg.Threads))
	}
	return args
}

type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(r io.Reader) ([]transcription.Token, error) {
	var doc whisperOutput
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode whisper json: %w", err)
	}
	out := make([]transcription.Token, 0, len(doc.Transcription))
	for _, seg := range doc.Transcription {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		out = append(out, transcription.Token{Text: seg.Text, StartMs: seg.Offsets.From})
	}
	return out, nil
}
