package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript/usecases"
	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone and transcribe",
		Long:  "Record from the microphone until Enter or Ctrl+C (or --duration elapses). The recording is uploaded as soon as it stops.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(deps); err != nil {
				return err
			}
			formatter := output.NewFormatter(cmd.OutOrStdout())

			refreshHistory(cmd, deps, formatter)

			if err := deps.App.StartRecording.Execute(cmd.Context()); err != nil {
				return userError(deps, err)
			}

			hint := "press Enter or Ctrl+C to stop"
			if duration > 0 {
				hint = "stopping after " + duration.String() + " (Enter or Ctrl+C stops early)"
			}
			formatter.RecordingStarted(hint)

			waitForStop(cmd, duration)

			return stopAndSubmit(cmd, deps, formatter)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long")

	return cmd
}

// waitForStop blocks until Enter, an interrupt, or the optional duration.
// The recording itself runs on the command context so an interrupt only ends
// the wait and the audio captured so far is kept.
func waitForStop(cmd *cobra.Command, duration time.Duration) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	enter := make(chan struct{})
	go func() {
		// stdin at EOF (not a terminal) leaves the other stop conditions.
		if _, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n'); err == nil {
			close(enter)
		}
	}()

	select {
	case <-ctx.Done():
	case <-enter:
	}
}

func stopAndSubmit(cmd *cobra.Command, deps *Dependencies, formatter *output.Formatter) error {
	payload, record, err := deps.App.StopRecording.Execute(cmd.Context())
	if payload != nil {
		formatter.RecordingStopped(payload.Duration)
	}
	if err != nil {
		if errors.Is(err, usecases.ErrBusy) {
			return err
		}
		return userError(deps, err)
	}
	formatter.TranscribeDone(record)
	return nil
}
