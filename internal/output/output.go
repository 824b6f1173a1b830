package output

import (
	"fmt"
	"io"
	"time"

	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) LoggedIn(email string) {
	fmt.Fprintf(f.w, "🔓 Logged in as %s\n", email)
}

func (f *Formatter) LoggedOut() {
	fmt.Fprintf(f.w, "🔒 Logged out\n")
}

func (f *Formatter) FileSelected(name string) {
	fmt.Fprintf(f.w, "📄 Selected: %s\n", name)
}

func (f *Formatter) RecordingStarted(hint string) {
	fmt.Fprintf(f.w, "🎙️  Recording... %s\n", hint)
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) Transcribing(name string) {
	fmt.Fprintf(f.w, "📝 Transcribing %s...\n", name)
}

func (f *Formatter) TranscribeDone(r *transcript.Record) {
	fmt.Fprintf(f.w, "✅ %s\n", r.Text)
}

func (f *Formatter) HistoryCleared() {
	fmt.Fprintf(f.w, "🗑️  Transcription history cleared\n")
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

// Transcripts prints the history, newest first.
func (f *Formatter) Transcripts(records []transcript.Record) {
	if len(records) == 0 {
		f.Info("No transcriptions yet")
		return
	}
	fmt.Fprintf(f.w, "📜 Transcriptions:\n\n")
	for i, r := range records {
		fmt.Fprintf(f.w, "  %d. %s\n", i+1, r.Text)
	}
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
