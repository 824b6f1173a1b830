package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Media types accepted by the transcription backend.
const (
	MediaTypeMPEG = "audio/mpeg"
	MediaTypeWAV  = "audio/wav"
)

// RecordingName is the display name given to microphone recordings.
const RecordingName = "recorded_audio.wav"

// MsgInvalidFileType is shown when a selected file is not MP3 or WAV.
const MsgInvalidFileType = "Invalid file type. Please upload an MP3 or WAV file."

var ErrInvalidFileType = errors.New("invalid file type: only MP3 and WAV are accepted")

// Payload is one clip waiting to be uploaded.
type Payload struct {
	Data      []byte
	MediaType string
	Name      string
	Duration  time.Duration // zero for selected files
}

var extensionTypes = map[string]string{
	".mp3":  MediaTypeMPEG,
	".mpga": MediaTypeMPEG,
	".wav":  MediaTypeWAV,
	".wave": MediaTypeWAV,
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".webm": "audio/webm",
}

// DeclaredType reports the media type a file claims to be. Known extensions
// decide; anything else is sniffed from the content.
func DeclaredType(path string) (string, error) {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t, nil
	}

	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting media type: %w", err)
	}
	switch {
	case m.Is(MediaTypeMPEG):
		return MediaTypeMPEG, nil
	case m.Is(MediaTypeWAV):
		return MediaTypeWAV, nil
	}
	return m.String(), nil
}

// SelectFile validates path and reads it into a payload. Only MP3 and WAV
// files are accepted.
func SelectFile(path string) (*Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	if info.IsDir() {
		return nil, ErrInvalidFileType
	}

	mediaType, err := DeclaredType(path)
	if err != nil {
		return nil, err
	}
	if mediaType != MediaTypeMPEG && mediaType != MediaTypeWAV {
		return nil, ErrInvalidFileType
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio file: %w", err)
	}

	return &Payload{
		Data:      data,
		MediaType: mediaType,
		Name:      filepath.Base(path),
	}, nil
}

// Pending holds the single payload awaiting upload. Setting a new payload
// replaces the old one.
type Pending struct {
	mu      sync.Mutex
	payload *Payload
}

func (p *Pending) Set(payload *Payload) {
	p.mu.Lock()
	p.payload = payload
	p.mu.Unlock()
}

func (p *Pending) Get() *Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payload
}

func (p *Pending) Clear() {
	p.Set(nil)
}

// Name returns the pending payload's display name, or "" when empty.
func (p *Pending) Name() string {
	if payload := p.Get(); payload != nil {
		return payload.Name
	}
	return ""
}
