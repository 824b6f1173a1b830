package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
)

type fakeAPI struct {
	mu       sync.Mutex
	list     []transcript.Record
	listErr  error
	result   transcript.Record
	uploadFn func(payload *audio.Payload) error
	clearErr error

	listCalls   int
	uploadCalls int
	clearCalls  int
	tokens      []string
	uploaded    []*audio.Payload
}

func (f *fakeAPI) ListTranscriptions(_ context.Context, token string) ([]transcript.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.tokens = append(f.tokens, token)
	return f.list, f.listErr
}

func (f *fakeAPI) Upload(_ context.Context, token string, payload *audio.Payload) (*transcript.Record, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.tokens = append(f.tokens, token)
	f.uploaded = append(f.uploaded, payload)
	fn := f.uploadFn
	result := f.result
	f.mu.Unlock()

	if fn != nil {
		if err := fn(payload); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func (f *fakeAPI) ClearTranscriptions(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	f.tokens = append(f.tokens, token)
	return f.clearErr
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fakeStream struct {
	chunks chan []byte
	active atomic.Bool
	once   sync.Once
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	s := &fakeStream{chunks: make(chan []byte, len(chunks))}
	for _, c := range chunks {
		s.chunks <- c
	}
	s.active.Store(true)
	return s
}

func (s *fakeStream) Chunks() <-chan []byte { return s.chunks }
func (s *fakeStream) Format() audio.Format {
	return audio.Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}
func (s *fakeStream) Active() bool { return s.active.Load() }
func (s *fakeStream) Close() error {
	s.once.Do(func() {
		s.active.Store(false)
		close(s.chunks)
	})
	return nil
}

type fakeSource struct {
	stream *fakeStream
	err    error
}

func (f *fakeSource) Open(context.Context) (audio.Stream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

type fixture struct {
	api      *fakeAPI
	history  *transcript.History
	pending  *audio.Pending
	status   *transcript.Status
	recorder *audio.Recorder
	upload   *Upload
}

func newFixture(source audio.Source) *fixture {
	f := &fixture{
		api:     &fakeAPI{result: transcript.Record{ID: "new", Text: "hello world"}},
		history: &transcript.History{},
		pending: &audio.Pending{},
		status:  &transcript.Status{},
	}
	if source == nil {
		source = &fakeSource{stream: newFakeStream()}
	}
	f.recorder = audio.NewRecorder(source, nil)
	f.upload = &Upload{
		API:     f.api,
		Session: staticToken("tok"),
		History: f.history,
		Pending: f.pending,
		Status:  f.status,
	}
	return f
}

func wavPayload() *audio.Payload {
	return &audio.Payload{Data: []byte("RIFF"), MediaType: audio.MediaTypeWAV, Name: "clip.wav"}
}

func TestUpload_NilPayloadMakesNoRequest(t *testing.T) {
	f := newFixture(nil)

	record, err := f.upload.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoPayload)
	assert.Nil(t, record)
	assert.Equal(t, 0, f.api.uploadCalls)
	assert.Equal(t, MsgNoPayload, f.status.Error())

	_, err = f.upload.ExecutePending(context.Background())
	assert.ErrorIs(t, err, ErrNoPayload)
	assert.Equal(t, 0, f.api.uploadCalls)
}

func TestUpload_PrependsRecord(t *testing.T) {
	f := newFixture(nil)
	f.history.Replace([]transcript.Record{{Text: "older"}, {Text: "oldest"}})
	f.pending.Set(wavPayload())
	f.status.SetError("stale")

	record, err := f.upload.ExecutePending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hello world", record.Text)
	assert.Equal(t, []transcript.Record{
		{ID: "new", Text: "hello world"},
		{Text: "older"},
		{Text: "oldest"},
	}, f.history.Records())
	assert.Nil(t, f.pending.Get())
	assert.Empty(t, f.status.Error())
	assert.False(t, f.status.Busy())
	assert.Equal(t, []string{"tok"}, f.api.tokens)
}

func TestUpload_FailureClearsPendingAndBusy(t *testing.T) {
	f := newFixture(nil)
	f.history.Replace([]transcript.Record{{Text: "kept"}})
	f.api.uploadFn = func(*audio.Payload) error { return errors.New("HTTP 500") }
	f.pending.Set(wavPayload())

	_, err := f.upload.ExecutePending(context.Background())

	require.Error(t, err)
	assert.Equal(t, transcript.MsgUploadFailed, f.status.Error())
	assert.False(t, f.status.Busy())
	assert.Nil(t, f.pending.Get())
	assert.Equal(t, []transcript.Record{{Text: "kept"}}, f.history.Records())
}

func TestUpload_DoubleInvocationDoesNotDoubleAppend(t *testing.T) {
	f := newFixture(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.api.uploadFn = func(*audio.Payload) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.upload.Execute(context.Background(), wavPayload())
		done <- err
	}()

	<-entered
	assert.True(t, f.status.Busy())
	_, err := f.upload.Execute(context.Background(), wavPayload())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, f.api.uploadCalls)
	assert.Equal(t, 1, f.history.Len())
	assert.False(t, f.status.Busy())
}

func TestRecording_StopUploadsOnceAfterReleasingMicrophone(t *testing.T) {
	stream := newFakeStream(make([]byte, 32000), make([]byte, 32000))
	f := newFixture(&fakeSource{stream: stream})

	var activeDuringUpload atomic.Bool
	activeDuringUpload.Store(true)
	f.api.uploadFn = func(*audio.Payload) error {
		activeDuringUpload.Store(stream.Active())
		return nil
	}

	start := &StartRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status}
	stop := &StopRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status, Upload: f.upload}

	require.NoError(t, start.Execute(context.Background()))
	payload, record, err := stop.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.api.uploadCalls)
	require.Len(t, f.api.uploaded, 1)
	assert.Equal(t, audio.MediaTypeWAV, f.api.uploaded[0].MediaType)
	assert.Equal(t, audio.RecordingName, f.api.uploaded[0].Name)
	assert.Equal(t, time.Second*2, payload.Duration)
	assert.Equal(t, "hello world", record.Text)

	assert.False(t, stream.Active())
	assert.False(t, activeDuringUpload.Load(), "microphone released before upload")
	assert.Equal(t, audio.StateIdle, f.recorder.State())
	assert.Equal(t, "hello world", f.history.Records()[0].Text)
}

func TestRecording_EmptyCaptureStillUploadsOnce(t *testing.T) {
	f := newFixture(nil)
	start := &StartRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status}
	stop := &StopRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status, Upload: f.upload}

	require.NoError(t, start.Execute(context.Background()))
	payload, _, err := stop.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.api.uploadCalls)
	assert.Len(t, payload.Data, 44)
}

func TestRecording_StartSupersedesPendingFile(t *testing.T) {
	f := newFixture(&fakeSource{stream: newFakeStream([]byte{0, 0})})
	f.pending.Set(&audio.Payload{Name: "picked.mp3", MediaType: audio.MediaTypeMPEG})

	start := &StartRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status}
	require.NoError(t, start.Execute(context.Background()))

	assert.Nil(t, f.pending.Get())
	_, err := f.recorder.Stop()
	require.NoError(t, err)
}

func TestRecording_StopWithoutStartIsRejected(t *testing.T) {
	f := newFixture(nil)
	stop := &StopRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status, Upload: f.upload}

	_, _, err := stop.Execute(context.Background())

	assert.ErrorIs(t, err, audio.ErrNotRecording)
	assert.Equal(t, 0, f.api.uploadCalls)
	assert.Equal(t, audio.MsgNotRecording, f.status.MessageFor(err))
}

func TestRecording_StopReportsItselfAfterEarlierFailure(t *testing.T) {
	f := newFixture(nil)
	sel := &SelectFile{Pending: f.pending, Recorder: f.recorder, Status: f.status}
	stop := &StopRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status, Upload: f.upload}

	bad := filepath.Join(t.TempDir(), "a.ogg")
	require.NoError(t, os.WriteFile(bad, []byte("OggS"), 0o644))
	selErr := func() error { _, err := sel.Execute(bad); return err }()
	require.ErrorIs(t, selErr, audio.ErrInvalidFileType)

	_, _, err := stop.Execute(context.Background())

	require.ErrorIs(t, err, audio.ErrNotRecording)
	assert.Equal(t, audio.MsgNotRecording, f.status.MessageFor(err))
	assert.Empty(t, f.status.MessageFor(errors.New("unrelated")))
}

func TestRecording_PermissionDenied(t *testing.T) {
	f := newFixture(&fakeSource{err: errors.New("Permission denied")})
	f.pending.Set(wavPayload())
	start := &StartRecording{Recorder: f.recorder, Pending: f.pending, Status: f.status}

	err := start.Execute(context.Background())

	assert.ErrorIs(t, err, audio.ErrPermissionDenied)
	assert.Equal(t, audio.MsgPermissionDenied, f.status.Error())
	assert.Equal(t, audio.MsgPermissionDenied, f.status.MessageFor(err))
	assert.NotNil(t, f.pending.Get(), "failed start keeps the pending file")
}

func TestSelectFile_InvalidTypeLeavesPendingUnset(t *testing.T) {
	f := newFixture(nil)
	sel := &SelectFile{Pending: f.pending, Recorder: f.recorder, Status: f.status}

	for _, name := range []string{"a.ogg", "b.txt", "c.flac", "d.m4a"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

		_, err := sel.Execute(path)

		assert.ErrorIs(t, err, audio.ErrInvalidFileType, name)
		assert.Nil(t, f.pending.Get(), name)
		assert.Equal(t, audio.MsgInvalidFileType, f.status.Error(), name)
	}
}

func TestSelectFile_SetsPending(t *testing.T) {
	f := newFixture(nil)
	sel := &SelectFile{Pending: f.pending, Recorder: f.recorder, Status: f.status}
	f.status.SetError("old")
	path := filepath.Join(t.TempDir(), "talk.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o644))

	payload, err := sel.Execute(path)
	require.NoError(t, err)

	assert.Equal(t, payload, f.pending.Get())
	assert.Equal(t, "talk.mp3", f.pending.Name())
	assert.Empty(t, f.status.Error())
}

func TestSelectFile_RejectedWhileRecording(t *testing.T) {
	f := newFixture(&fakeSource{stream: newFakeStream([]byte{1, 1})})
	require.NoError(t, f.recorder.Start(context.Background()))
	sel := &SelectFile{Pending: f.pending, Recorder: f.recorder, Status: f.status}

	_, err := sel.Execute(filepath.Join(t.TempDir(), "talk.mp3"))

	assert.ErrorIs(t, err, ErrRecordingInProgress)
	_, err = f.recorder.Stop()
	require.NoError(t, err)
}

func TestFetchHistory(t *testing.T) {
	f := newFixture(nil)
	f.api.list = []transcript.Record{{Text: "one"}, {Text: "two"}}
	fetch := &FetchHistory{API: f.api, Session: staticToken("tok"), History: f.history}

	require.NoError(t, fetch.Execute(context.Background()))

	assert.Equal(t, f.api.list, f.history.Records())
}

func TestFetchHistory_FailureIsLoggedAndListKept(t *testing.T) {
	f := newFixture(nil)
	f.history.Replace([]transcript.Record{{Text: "stale"}})
	f.api.listErr = errors.New("connection refused")
	core, logs := observer.New(zapcore.ErrorLevel)
	fetch := &FetchHistory{API: f.api, Session: staticToken("tok"), History: f.history, Log: zap.New(core)}

	err := fetch.Execute(context.Background())

	assert.Error(t, err)
	assert.Equal(t, []transcript.Record{{Text: "stale"}}, f.history.Records())
	assert.Equal(t, 1, logs.FilterMessage("fetching transcriptions").Len())
	assert.Empty(t, f.status.Error(), "fetch failures are not shown inline")
}

func TestFetchHistory_WithoutSessionSkipsRequest(t *testing.T) {
	f := newFixture(nil)
	fetch := &FetchHistory{API: f.api, Session: staticToken(""), History: f.history}

	require.NoError(t, fetch.Execute(context.Background()))
	assert.Equal(t, 0, f.api.listCalls)
}

func TestClearHistory(t *testing.T) {
	f := newFixture(nil)
	f.history.Replace([]transcript.Record{{Text: "a"}, {Text: "b"}, {Text: "c"}})
	uc := &ClearHistory{API: f.api, Session: staticToken("tok"), History: f.history, Status: f.status}

	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, 0, f.history.Len())
	assert.Equal(t, 1, f.api.clearCalls)
}

func TestClearHistory_FailureKeepsList(t *testing.T) {
	f := newFixture(nil)
	f.history.Replace([]transcript.Record{{Text: "a"}})
	f.api.clearErr = errors.New("HTTP 503")
	uc := &ClearHistory{API: f.api, Session: staticToken("tok"), History: f.history, Status: f.status}

	err := uc.Execute(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, f.history.Len())
	assert.Equal(t, transcript.MsgClearFailed, f.status.Error())
}

func TestClearHistory_EmptyListIsNoop(t *testing.T) {
	f := newFixture(nil)
	uc := &ClearHistory{API: f.api, Session: staticToken("tok"), History: f.history, Status: f.status}

	require.NoError(t, uc.Execute(context.Background()))
	assert.Equal(t, 0, f.api.clearCalls)
}
