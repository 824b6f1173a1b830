package usecases

import (
	"context"
	"errors"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
)

// StartRecording opens the microphone. A successful start supersedes any
// pending file.
type StartRecording struct {
	Recorder *audio.Recorder
	Pending  *audio.Pending
	Status   *transcript.Status
}

func (s *StartRecording) Execute(ctx context.Context) error {
	if err := s.Recorder.Start(ctx); err != nil {
		if errors.Is(err, audio.ErrPermissionDenied) {
			s.Status.Fail(err, audio.MsgPermissionDenied)
		} else {
			s.Status.Fail(err, err.Error())
		}
		return err
	}
	s.Pending.Clear()
	s.Status.ClearError()
	return nil
}

// StopRecording finalizes the recording and submits it straight away. The
// microphone is released before the upload starts.
type StopRecording struct {
	Recorder *audio.Recorder
	Pending  *audio.Pending
	Status   *transcript.Status
	Upload   *Upload
}

func (s *StopRecording) Execute(ctx context.Context) (*audio.Payload, *transcript.Record, error) {
	payload, err := s.Recorder.Stop()
	if err != nil {
		if errors.Is(err, audio.ErrNotRecording) {
			s.Status.Fail(err, audio.MsgNotRecording)
		} else {
			s.Status.Fail(err, err.Error())
		}
		return nil, nil, err
	}

	s.Pending.Set(payload)
	record, err := s.Upload.Execute(ctx, payload)
	return payload, record, err
}
