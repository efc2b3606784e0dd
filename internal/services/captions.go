package services

import (
	"math"
	"strings"

	"github.com/yungbote/stockmedia-backend/internal/domain/transcription"
)

// CombineWindowMs is the minimum caption length before a word boundary may
// start a new caption.
const CombineWindowMs = 200

type rawCaption struct {
	text    string
	startMs int64
}

// combineTokens groups recognizer tokens into captions. A token opens a new
// caption only when it starts a word (leading space) and the current caption
// has been open for at least windowMs.
func combineTokens(tokens []transcription.Token, windowMs int64) []rawCaption {
	var out []rawCaption
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		if len(out) == 0 {
			out = append(out, rawCaption{text: tok.Text, startMs: tok.StartMs})
			continue
		}
		cur := &out[len(out)-1]
		if strings.HasPrefix(tok.Text, " ") && tok.StartMs-cur.startMs >= windowMs {
			out = append(out, rawCaption{text: tok.Text, startMs: tok.StartMs})
			continue
		}
		cur.text += tok.Text
	}
	return out
}

// buildCaptionTrack rebases captions onto the first caption's start. Each
// caption ends where the next begins; the last one lasts one second. The
// track runs two seconds past the last caption's absolute start.
func buildCaptionTrack(caps []rawCaption) *transcription.CaptionTrack {
	track := &transcription.CaptionTrack{Captions: []transcription.Caption{}}
	if len(caps) == 0 {
		return track
	}

	first := seconds(caps[0].startMs)
	for i, c := range caps {
		start := seconds(c.startMs)
		end := start - first + 1
		if i+1 < len(caps) {
			end = seconds(caps[i+1].startMs) - first
		}
		track.Captions = append(track.Captions, transcription.Caption{
			Text:    c.text,
			StartMs: toMs(start - first),
			EndMs:   toMs(end),
		})
	}

	track.DurationInSeconds = seconds(caps[len(caps)-1].startMs) + 2
	track.DurationInFrames = int(math.Ceil(track.DurationInSeconds * transcription.FramesPerSecond))
	return track
}

func seconds(ms int64) float64 { return float64(ms) / 1000 }

func toMs(s float64) int64 { return int64(math.Round(s * 1000)) }
