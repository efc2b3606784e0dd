package transcription

// FramesPerSecond is the composition frame rate captions are timed against.
const FramesPerSecond = 30

// Token is one recognized unit (whisper segment or speech word).
// Text keeps its leading space when the recognizer emits one.
type Token struct {
	Text    string
	StartMs int64
}

type Caption struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

type CaptionTrack struct {
	Captions          []Caption `json:"captions"`
	DurationInSeconds float64   `json:"durationInSeconds"`
	DurationInFrames  int       `json:"durationInFrames"`
}
