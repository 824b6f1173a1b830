package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
)

// MsgNoPayload is shown when upload is requested with nothing selected.
const MsgNoPayload = "No audio file selected or recorded."

var (
	ErrNoPayload           = errors.New("no audio file selected or recorded")
	ErrBusy                = errors.New("an upload is already in progress")
	ErrRecordingInProgress = errors.New("a recording is in progress. Stop it before selecting a file")
)

// TranscriptAPI is the backend the transcription usecases talk to.
type TranscriptAPI interface {
	ListTranscriptions(ctx context.Context, token string) ([]transcript.Record, error)
	Upload(ctx context.Context, token string, payload *audio.Payload) (*transcript.Record, error)
	ClearTranscriptions(ctx context.Context, token string) error
}

// TokenSource supplies the current session token.
type TokenSource interface {
	Token() string
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// SelectFile puts a user-chosen file into the pending slot.
type SelectFile struct {
	Pending  *audio.Pending
	Recorder *audio.Recorder
	Status   *transcript.Status
}

// Execute validates path. On failure the message is shown inline and the
// pending slot is left as it was.
func (s *SelectFile) Execute(path string) (*audio.Payload, error) {
	if s.Recorder != nil && s.Recorder.State() != audio.StateIdle {
		s.Status.Fail(ErrRecordingInProgress, "A recording is in progress. Stop it before selecting a file.")
		return nil, ErrRecordingInProgress
	}

	payload, err := audio.SelectFile(path)
	if err != nil {
		if errors.Is(err, audio.ErrInvalidFileType) {
			s.Status.Fail(err, audio.MsgInvalidFileType)
		} else {
			s.Status.Fail(err, err.Error())
		}
		return nil, err
	}

	s.Pending.Set(payload)
	s.Status.ClearError()
	return payload, nil
}

// Upload sends a payload for transcription and prepends the result.
type Upload struct {
	API     TranscriptAPI
	Session TokenSource
	History *transcript.History
	Pending *audio.Pending
	Status  *transcript.Status
	Log     *zap.Logger
}

// Execute uploads payload. The pending slot is emptied whether or not the
// upload succeeds.
func (u *Upload) Execute(ctx context.Context, payload *audio.Payload) (*transcript.Record, error) {
	if payload == nil {
		u.Status.Fail(ErrNoPayload, MsgNoPayload)
		return nil, ErrNoPayload
	}
	if !u.Status.Begin() {
		return nil, ErrBusy
	}
	defer u.Status.End()
	u.Status.ClearError()

	log := nopIfNil(u.Log)
	log.Info("uploading audio",
		zap.String("name", payload.Name),
		zap.String("media_type", payload.MediaType),
		zap.Int("bytes", len(payload.Data)),
	)

	record, err := u.API.Upload(ctx, u.Session.Token(), payload)
	u.Pending.Clear()
	if err != nil {
		log.Error("upload failed", zap.String("name", payload.Name), zap.Error(err))
		u.Status.Fail(err, transcript.MsgUploadFailed)
		return nil, fmt.Errorf("uploading audio: %w", err)
	}

	u.History.Prepend(*record)
	return record, nil
}

// ExecutePending uploads whatever is in the pending slot.
func (u *Upload) ExecutePending(ctx context.Context) (*transcript.Record, error) {
	return u.Execute(ctx, u.Pending.Get())
}
