package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
)

// FetchHistory loads the user's transcriptions from the backend.
type FetchHistory struct {
	API     TranscriptAPI
	Session TokenSource
	History *transcript.History
	Log     *zap.Logger
}

// Execute replaces the local list. A failure is logged and leaves the list
// as it was; callers may ignore the returned error.
func (f *FetchHistory) Execute(ctx context.Context) error {
	token := f.Session.Token()
	if token == "" {
		return nil
	}

	records, err := f.API.ListTranscriptions(ctx, token)
	if err != nil {
		nopIfNil(f.Log).Error("fetching transcriptions", zap.Error(err))
		return fmt.Errorf("fetching transcriptions: %w", err)
	}

	f.History.Replace(records)
	return nil
}

// ClearHistory deletes every stored transcription.
type ClearHistory struct {
	API     TranscriptAPI
	Session TokenSource
	History *transcript.History
	Status  *transcript.Status
	Log     *zap.Logger
}

// Execute does nothing when the list is already empty. On failure the list
// is left unchanged.
func (c *ClearHistory) Execute(ctx context.Context) error {
	if c.History.Len() == 0 {
		return nil
	}

	if err := c.API.ClearTranscriptions(ctx, c.Session.Token()); err != nil {
		nopIfNil(c.Log).Error("clearing transcriptions", zap.Error(err))
		c.Status.Fail(err, transcript.MsgClearFailed)
		return fmt.Errorf("clearing transcriptions: %w", err)
	}

	c.History.Clear()
	return nil
}
