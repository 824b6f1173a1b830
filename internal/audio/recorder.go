package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// User-visible messages for microphone failures.
const (
	MsgPermissionDenied = "Failed to access microphone. Please ensure permissions are granted."
	MsgNotRecording     = "No recording in progress."
)

var (
	ErrPermissionDenied = errors.New("microphone access denied")
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// Source opens the microphone.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open microphone. Chunks is closed once the stream ends, and
// Close must not return before the device has been released.
type Stream interface {
	Chunks() <-chan []byte
	Format() Format
	Active() bool
	Close() error
}

// Recorder captures one microphone recording at a time.
type Recorder struct {
	source Source
	log    *zap.Logger

	mu        sync.Mutex
	state     State
	stream    Stream
	chunks    [][]byte
	collected chan struct{}
}

func NewRecorder(source Source, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{source: source, log: log}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start opens the microphone and begins collecting chunks.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.state = StateRequestingPermission
	r.mu.Unlock()

	stream, err := r.source.Open(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.state = StateIdle
		r.log.Error("opening microphone", zap.Error(err))
		return fmt.Errorf("%w (%v)", ErrPermissionDenied, err)
	}

	r.stream = stream
	r.chunks = nil
	r.collected = make(chan struct{})
	r.state = StateRecording
	go r.collect(stream, r.collected)

	r.log.Info("recording started", zap.Int("sample_rate", stream.Format().SampleRate))
	return nil
}

func (r *Recorder) collect(stream Stream, done chan<- struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
}

// Stop releases the microphone and returns everything captured as a single
// WAV payload. It is only valid while recording.
func (r *Recorder) Stop() (*Payload, error) {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.state = StateFinalizing
	stream, collected := r.stream, r.collected
	r.mu.Unlock()

	closeErr := stream.Close()
	<-collected

	r.mu.Lock()
	pcm := bytes.Join(r.chunks, nil)
	r.chunks = nil
	r.stream = nil
	r.state = StateIdle
	r.mu.Unlock()

	if closeErr != nil {
		r.log.Warn("closing microphone stream", zap.Error(closeErr))
	}
	// An empty recording is still handed back; the backend decides what to
	// make of a header-only WAV.
	if len(pcm) == 0 {
		r.log.Warn("recording captured no audio")
	}

	format := stream.Format()
	payload := &Payload{
		Data:      EncodeWAV(pcm, format),
		MediaType: MediaTypeWAV,
		Name:      RecordingName,
		Duration:  format.Duration(len(pcm)),
	}

	r.log.Info("recording finalized",
		zap.Int("bytes", len(payload.Data)),
		zap.Duration("duration", payload.Duration),
	)
	return payload, nil
}
