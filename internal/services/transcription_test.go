package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
	pkgerrors "github.com/yungbote/stockmedia-backend/internal/pkg/errors"
	"github.com/yungbote/stockmedia-backend/internal/platform/localmedia"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

func TestCombineTokens(t *testing.T) {
	tokens := []transcription.Token{
		{Text: " Hello", StartMs: 0},
		{Text: " there", StartMs: 120},
		{Text: ",", StartMs: 300},
		{Text: " general", StartMs: 400},
		{Text: "ly", StartMs: 650},
		{Text: "  ", StartMs: 700},
		{Text: " yes", StartMs: 700},
	}
	got := combineTokens(tokens, CombineWindowMs)
	require.Equal(t, []rawCaption{
		{text: " Hello there,", startMs: 0},
		{text: " generally", startMs: 400},
		{text: " yes", startMs: 700},
	}, got)
}

func TestCombineTokensWindowBoundary(t *testing.T) {
	tokens := []transcription.Token{
		{Text: " one", StartMs: 1000},
		{Text: " two", StartMs: 1199},
		{Text: " three", StartMs: 1200},
		{Text: "four", StartMs: 5000},
	}
	got := combineTokens(tokens, CombineWindowMs)
	require.Equal(t, []rawCaption{
		{text: " one two", startMs: 1000},
		{text: " threefour", startMs: 1200},
	}, got, "199 ms merges, 200 ms splits, no leading space never splits")
}

func TestBuildCaptionTrack(t *testing.T) {
	track := buildCaptionTrack([]rawCaption{
		{text: " Hello", startMs: 1500},
		{text: " world", startMs: 2250},
		{text: " again", startMs: 4000},
	})
	assert.Equal(t, []transcription.Caption{
		{Text: " Hello", StartMs: 0, EndMs: 750},
		{Text: " world", StartMs: 750, EndMs: 2500},
		{Text: " again", StartMs: 2500, EndMs: 3500},
	}, track.Captions)
	assert.InDelta(t, 6.0, track.DurationInSeconds, 1e-9)
	assert.Equal(t, 180, track.DurationInFrames)
}

func TestBuildCaptionTrackRoundsFrames(t *testing.T) {
	track := buildCaptionTrack([]rawCaption{{text: "x", startMs: 10}})
	assert.Equal(t, []transcription.Caption{{Text: "x", StartMs: 0, EndMs: 1000}}, track.Captions)
	assert.InDelta(t, 2.01, track.DurationInSeconds, 1e-9)
	assert.Equal(t, 61, track.DurationInFrames)
}

func TestBuildCaptionTrackEmpty(t *testing.T) {
	track := buildCaptionTrack(nil)
	assert.NotNil(t, track.Captions)
	assert.Empty(t, track.Captions)
	assert.Zero(t, track.DurationInSeconds)
	assert.Zero(t, track.DurationInFrames)
}

// fakeTools copies the input instead of running ffmpeg.
type fakeTools struct {
	root       string
	convertErr error
	converted  string
}

func (f *fakeTools) AssertReady(context.Context) error { return nil }

func (f *fakeTools) NewWorkDir(prefix string) (string, func(), error) {
	dir, err := os.MkdirTemp(f.root, prefix+"-*")
	return dir, func() { _ = os.RemoveAll(dir) }, err
}

func (f *fakeTools) ConvertToWav(_ context.Context, in, out string, _ localmedia.WavOptions) (string, error) {
	if f.convertErr != nil {
		return "", f.convertErr
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return "", err
	}
	f.converted = string(b)
	return out, os.WriteFile(out, b, 0o644)
}

type fakeRecognizer struct {
	tokens []transcription.Token
	err    error
	wav    string
}

func (r *fakeRecognizer) Name() string { return "fake" }

func (r *fakeRecognizer) Recognize(_ context.Context, wav string) ([]transcription.Token, error) {
	r.wav = wav
	return r.tokens, r.err
}

type fakeObjects struct{ body string }

func (o *fakeObjects) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	if !strings.HasPrefix(uri, "gs://audio/") {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(o.body)), nil
}

func TestTranscribeHTTPAudio(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	root := t.TempDir()
	tools := &fakeTools{root: root}
	rec := &fakeRecognizer{tokens: []transcription.Token{{Text: " Hi", StartMs: 1000}, {Text: " you", StartMs: 1500}}}
	svc := NewTranscriptionService(logger.Nop(), TranscriptionConfig{FetchRetries: 2}, tools, rec, nil)

	track, err := svc.Transcribe(context.Background(), srv.URL+"/voice.mp3")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, "mp3-bytes", tools.converted)
	assert.Equal(t, "input.wav", filepath.Base(rec.wav))
	assert.Equal(t, []transcription.Caption{
		{Text: " Hi", StartMs: 0, EndMs: 500},
		{Text: " you", StartMs: 500, EndMs: 1500},
	}, track.Captions)
	assert.InDelta(t, 3.5, track.DurationInSeconds, 1e-9)
	assert.Equal(t, 105, track.DurationInFrames)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "work dir must be removed")
}

func TestTranscribeGCSAudio(t *testing.T) {
	tools := &fakeTools{root: t.TempDir()}
	svc := NewTranscriptionService(logger.Nop(), TranscriptionConfig{}, tools, &fakeRecognizer{}, &fakeObjects{body: "gcs-bytes"})

	track, err := svc.Transcribe(context.Background(), "gs://audio/clip.wav")
	require.NoError(t, err)
	assert.Equal(t, "gcs-bytes", tools.converted)
	assert.Empty(t, track.Captions)
}

func TestTranscribeRejectsBadURL(t *testing.T) {
	svc := NewTranscriptionService(logger.Nop(), TranscriptionConfig{}, &fakeTools{root: t.TempDir()}, &fakeRecognizer{}, nil)
	for _, raw := range []string{"", "ftp://host/a.mp3", "not a url", "https:///nohost.mp3"} {
		_, err := svc.Transcribe(context.Background(), raw)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument, raw)
	}
}

func TestTranscribeUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	svc := NewTranscriptionService(logger.Nop(), TranscriptionConfig{}, &fakeTools{root: t.TempDir()}, &fakeRecognizer{}, nil)
	_, err := svc.Transcribe(context.Background(), srv.URL+"/missing.mp3")
	assert.ErrorIs(t, err, pkgerrors.ErrUpstream)

	svc = NewTranscriptionService(logger.Nop(), TranscriptionConfig{}, &fakeTools{root: t.TempDir(), convertErr: errors.New("ffmpeg exit 1")}, &fakeRecognizer{}, nil)
	_, err = svc.Transcribe(context.Background(), srv.URL+"/a.mp3")
	assert.ErrorIs(t, err, pkgerrors.ErrUpstream)

	svc = NewTranscriptionService(logger.Nop(), TranscriptionConfig{}, &fakeTools{root: t.TempDir()}, &fakeRecognizer{err: errors.New("model missing")}, nil)
	_, err = svc.Transcribe(context.Background(), srv.URL+"/a.mp3")
	assert.ErrorIs(t, err, pkgerrors.ErrUpstream)

	svc = NewTranscriptionService(logger.Nop(), TranscriptionConfig{MaxDownloadBytes: 2}, &fakeTools{root: t.TempDir()}, &fakeRecognizer{}, nil)
	_, err = svc.Transcribe(context.Background(), srv.URL+"/a.mp3")
	assert.ErrorIs(t, err, pkgerrors.ErrUpstream)
}
