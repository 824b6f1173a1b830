package app

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/manish3-4/speech-to-text-frontend/config"
	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/backend"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/session"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript/usecases"
	"github.com/manish3-4/speech-to-text-frontend/internal/logging"
	"github.com/manish3-4/speech-to-text-frontend/internal/storage"
)

// App holds the state of one client process. Everything is created here and
// handed to the commands explicitly.
type App struct {
	DB       *storage.Database
	Session  *session.Manager
	Backend  *backend.Client
	Recorder *audio.Recorder
	History  *transcript.History
	Pending  *audio.Pending
	Status   *transcript.Status

	SelectFile     *usecases.SelectFile
	Upload         *usecases.Upload
	StartRecording *usecases.StartRecording
	StopRecording  *usecases.StopRecording
	FetchHistory   *usecases.FetchHistory
	ClearHistory   *usecases.ClearHistory
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := storage.Open(filepath.Join(cfg.StateDir, storage.DefaultFileName))
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	client := backend.NewClient(backend.Options{
		BaseURL:      cfg.BackendURL,
		AuthPath:     cfg.AuthPath,
		RegisterPath: cfg.RegisterPath,
		Timeout:      cfg.HTTPTimeout,
		Logger:       logging.Component(log, "backend"),
	})

	tokens := storage.NewTokenStore(storage.NewLocalStorage(db))
	sess := session.NewManager(tokens, client, logging.Component(log, "session"))
	if err := sess.Restore(); err != nil {
		db.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	recorder := audio.NewRecorder(&audio.FFmpegSource{
		InputFormat: cfg.InputFormat,
		InputDevice: cfg.InputDevice,
		SampleRate:  cfg.SampleRate,
	}, logging.Component(log, "audio"))

	history := &transcript.History{}
	pending := &audio.Pending{}
	status := &transcript.Status{}
	usecaseLog := logging.Component(log, "transcription")

	upload := &usecases.Upload{
		API:     client,
		Session: sess,
		History: history,
		Pending: pending,
		Status:  status,
		Log:     usecaseLog,
	}

	return &App{
		DB:       db,
		Session:  sess,
		Backend:  client,
		Recorder: recorder,
		History:  history,
		Pending:  pending,
		Status:   status,
		SelectFile: &usecases.SelectFile{
			Pending:  pending,
			Recorder: recorder,
			Status:   status,
		},
		Upload: upload,
		StartRecording: &usecases.StartRecording{
			Recorder: recorder,
			Pending:  pending,
			Status:   status,
		},
		StopRecording: &usecases.StopRecording{
			Recorder: recorder,
			Pending:  pending,
			Status:   status,
			Upload:   upload,
		},
		FetchHistory: &usecases.FetchHistory{
			API:     client,
			Session: sess,
			History: history,
			Log:     usecaseLog,
		},
		ClearHistory: &usecases.ClearHistory{
			API:     client,
			Session: sess,
			History: history,
			Status:  status,
			Log:     usecaseLog,
		},
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
