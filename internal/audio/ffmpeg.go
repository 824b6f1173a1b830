package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	chunkSize    = 4096
	stopDeadline = 5 * time.Second
)

// FFmpegSource captures the microphone with ffmpeg, streaming 16-bit mono PCM.
type FFmpegSource struct {
	InputFormat string // e.g. avfoundation, pulse, dshow
	InputDevice string // e.g. :default
	SampleRate  int
}

func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found. Install it with your package manager (e.g. brew install ffmpeg)")
	}
	return nil
}

func (s *FFmpegSource) format() Format {
	return Format{SampleRate: s.SampleRate, Channels: 1, BitsPerSample: 16}
}

// Open starts ffmpeg and blocks until the first audio arrives, so a denied
// or missing device is reported here rather than at Stop.
func (s *FFmpegSource) Open(ctx context.Context) (Stream, error) {
	if err := CheckFFmpeg(); err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-f", s.InputFormat,
		"-i", s.InputDevice,
		"-ac", "1",
		"-ar", strconv.Itoa(s.SampleRate),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	reader := bufio.NewReaderSize(stdout, chunkSize)
	first := make(chan error, 1)
	go func() {
		_, err := reader.Peek(1)
		first <- err
	}()

	select {
	case err := <-first:
		if err != nil {
			_ = cmd.Wait()
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return nil, fmt.Errorf("microphone unavailable: %s", msg)
		}
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-first
		_ = cmd.Wait()
		return nil, ctx.Err()
	}

	st := &ffmpegStream{
		cmd:    cmd,
		reader: reader,
		format: s.format(),
		chunks: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	st.active.Store(true)
	go st.pump()

	return st, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	format Format
	chunks chan []byte
	done   chan struct{}

	active    atomic.Bool
	closeOnce sync.Once
	waitErr   error
}

func (s *ffmpegStream) pump() {
	for {
		buf := make([]byte, chunkSize)
		n, err := s.reader.Read(buf)
		if n > 0 {
			s.chunks <- buf[:n]
		}
		if err != nil {
			break
		}
	}
	close(s.chunks)

	s.waitErr = s.cmd.Wait()
	s.active.Store(false)
	close(s.done)
}

func (s *ffmpegStream) Chunks() <-chan []byte { return s.chunks }

func (s *ffmpegStream) Format() Format { return s.format }

func (s *ffmpegStream) Active() bool { return s.active.Load() }

// Close asks ffmpeg to finish, escalating to a kill if it does not exit.
func (s *ffmpegStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if runtime.GOOS == "windows" {
			_ = s.cmd.Process.Kill()
		} else if sigErr := s.cmd.Process.Signal(os.Interrupt); sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			_ = s.cmd.Process.Kill()
		}

		select {
		case <-s.done:
		case <-time.After(stopDeadline):
			_ = s.cmd.Process.Kill()
			<-s.done
		}

		// ffmpeg exits non-zero when interrupted; that is the normal path.
		var exitErr *exec.ExitError
		if s.waitErr != nil && !errors.As(s.waitErr, &exitErr) {
			err = s.waitErr
		}
	})
	return err
}
