package gcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

type memStager struct {
	bucket, object, contentType string
	body                        []byte
	deleted                     []string
}

func (m *memStager) Upload(_ context.Context, bucket, object, contentType string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.bucket, m.object, m.contentType, m.body = bucket, object, contentType, b
	return "gs://" + bucket + "/" + object, nil
}

func (m *memStager) Delete(_ context.Context, uri string) error {
	m.deleted = append(m.deleted, uri)
	return nil
}

func TestParseGSURI(t *testing.T) {
	bucket, object, err := ParseGSURI("gs://media-bucket/audio/voiceover.mp3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bucket != "media-bucket" || object != "audio/voiceover.mp3" {
		t.Fatalf("got %q %q", bucket, object)
	}

	for _, bad := range []string{"https://x/y", "gs://bucket-only", "gs:///obj"} {
		if _, _, err := ParseGSURI(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestWordTokens(t *testing.T) {
	resp := &speechpb.LongRunningRecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{
				Words: []*speechpb.WordInfo{
					{Word: "Hello", StartTime: &durationpb.Duration{Seconds: 0, Nanos: 100_000_000}},
					{Word: "world", StartTime: &durationpb.Duration{Seconds: 1, Nanos: 250_000_000}},
				},
			}}},
			nil,
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{
				Words: []*speechpb.WordInfo{{Word: " ", StartTime: durationpb.New(0)}, {Word: "again", StartTime: &durationpb.Duration{Seconds: 2}}},
			}}},
		},
	}
	got := wordTokens(resp)
	if len(got) != 3 {
		t.Fatalf("tokens = %d, want 3: %+v", len(got), got)
	}
	if got[0].Text != " Hello" || got[0].StartMs != 100 {
		t.Fatalf("token 0 = %+v", got[0])
	}
	if got[1].StartMs != 1250 || got[2].StartMs != 2000 {
		t.Fatalf("unexpected offsets: %+v", got)
	}
	if wordTokens(nil) != nil {
		t.Fatalf("nil response should give no tokens")
	}
}

func TestRecognitionAudioInlineUpToLimit(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "input.wav")
	if err := os.WriteFile(wav, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	st := &memStager{}
	s := &SpeechRecognizer{log: logger.Nop(), cfg: SpeechConfig{StagingBucket: "staging"}, stager: st, inlineLimit: 10}

	audio, cleanup, err := s.recognitionAudio(context.Background(), wav, 10)
	if err != nil {
		t.Fatalf("recognitionAudio: %v", err)
	}
	cleanup()
	content, ok := audio.AudioSource.(*speechpb.RecognitionAudio_Content)
	if !ok || string(content.Content) != "0123456789" {
		t.Fatalf("want inline content, got %T", audio.AudioSource)
	}
	if st.body != nil || len(st.deleted) != 0 {
		t.Fatalf("inline audio should not touch the stager: %+v", st)
	}
}

func TestRecognitionAudioStagesLongAudio(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "input.wav")
	payload := bytes.Repeat([]byte{0x7f}, 64)
	if err := os.WriteFile(wav, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	st := &memStager{}
	s := &SpeechRecognizer{log: logger.Nop(), cfg: SpeechConfig{StagingBucket: "staging"}, stager: st, inlineLimit: 10}

	audio, cleanup, err := s.recognitionAudio(context.Background(), wav, int64(len(payload)))
	if err != nil {
		t.Fatalf("recognitionAudio: %v", err)
	}
	uri, ok := audio.AudioSource.(*speechpb.RecognitionAudio_Uri)
	if !ok {
		t.Fatalf("want uri source, got %T", audio.AudioSource)
	}
	if st.bucket != "staging" || !strings.HasPrefix(st.object, "speech-staging/") || !strings.HasSuffix(st.object, ".wav") {
		t.Fatalf("staged at %q/%q", st.bucket, st.object)
	}
	if st.contentType != "audio/wav" || !bytes.Equal(st.body, payload) {
		t.Fatalf("staged body mismatch: type=%q len=%d", st.contentType, len(st.body))
	}
	if uri.Uri != "gs://staging/"+st.object {
		t.Fatalf("uri = %q", uri.Uri)
	}
	if len(st.deleted) != 0 {
		t.Fatalf("deleted before recognition finished")
	}
	cleanup()
	if len(st.deleted) != 1 || st.deleted[0] != uri.Uri {
		t.Fatalf("cleanup deleted %v", st.deleted)
	}
}

func TestRecognitionAudioRejectsLongAudioWithoutBucket(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "input.wav")
	if err := os.WriteFile(wav, make([]byte, 32), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, s := range map[string]*SpeechRecognizer{
		"no bucket": {log: logger.Nop(), stager: &memStager{}, inlineLimit: 10},
		"no stager": {log: logger.Nop(), cfg: SpeechConfig{StagingBucket: "staging"}, inlineLimit: 10},
	} {
		_, _, err := s.recognitionAudio(context.Background(), wav, 32)
		if !errors.Is(err, ErrAudioTooLarge) {
			t.Fatalf("%s: err = %v, want ErrAudioTooLarge", name, err)
		}
		if !strings.Contains(err.Error(), "32 bytes exceeds the 10 byte limit") {
			t.Fatalf("%s: message %q", name, err.Error())
		}
	}
	if MaxInlineAudioBytes != 10*1024*1024 {
		t.Fatalf("inline limit = %d", MaxInlineAudioBytes)
	}
}
