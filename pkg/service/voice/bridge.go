package voice

import (
	"context"
	"os"
	"strings"

	"github.com/mcortez-ml/nutria/pkg/adapter"
	"github.com/mcortez-ml/nutria/pkg/utils/logging"
)

// TranscriptionApology replaces failed transcriptions so the turn can
// continue as text.
const TranscriptionApology = "Lo siento, no pude entender el audio. ¿Puedes intentarlo de nuevo?"

// Bridge converts recorded audio to text and response text to speech.
// Failures degrade: transcription falls back to a fixed apology and
// synthesis signals "no audio" instead of returning errors.
type Bridge struct {
	gemini adapter.Gemini
}

func NewBridge(gemini adapter.Gemini) *Bridge {
	return &Bridge{gemini: gemini}
}

// Transcribe converts audio bytes to text. It always returns displayable
// text; on any failure it returns the fixed apology.
func (b *Bridge) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	if len(audio) == 0 {
		return TranscriptionApology
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	text, err := b.gemini.Transcribe(ctx, audio, mimeType)
	if err != nil {
		logging.From(ctx).Warn("transcription failed", "error", err)
		return TranscriptionApology
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return TranscriptionApology
	}
	return text
}

// Synthesize converts text to audio. ok=false is the explicit no-audio
// signal so callers can degrade to text-only.
func (b *Bridge) Synthesize(ctx context.Context, text string) (data []byte, mimeType string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return nil, "", false
	}

	data, mimeType, err := b.gemini.Synthesize(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("speech synthesis failed", "error", err)
		return nil, "", false
	}
	if len(data) == 0 {
		return nil, "", false
	}

	return data, mimeType, true
}

// SynthesizeToFile writes synthesized audio to a temporary file. The cleanup
// function must be called on every exit path; it removes the file.
func (b *Bridge) SynthesizeToFile(ctx context.Context, text string) (path string, cleanup func(), ok bool) {
	data, mimeType, ok := b.Synthesize(ctx, text)
	if !ok {
		return "", func() {}, false
	}

	f, err := os.CreateTemp("", "nutria-*"+extensionFor(mimeType))
	if err != nil {
		logging.From(ctx).Warn("failed to create audio temp file", "error", err)
		return "", func() {}, false
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		logging.From(ctx).Warn("failed to write audio temp file", "error", err)
		return "", func() {}, false
	}
	f.Close()

	name := f.Name()
	return name, func() { os.Remove(name) }, true
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	default:
		return ".wav"
	}
}
