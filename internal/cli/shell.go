package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

const shellHelp = `Commands:
  open <file>   select an MP3 or WAV file
  upload        transcribe the selected file
  record        start recording from the microphone
  stop          stop recording and transcribe it
  list          show your transcriptions
  clear         delete your transcription history
  logout        log out and leave
  help          show this help
  quit          leave`

// errShellExit ends the loop without an error.
var errShellExit = errors.New("exit")

func NewAppCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "app",
		Short: "Open the interactive transcription view",
		Long:  "An interactive view over the same actions as the other commands. Commands are processed one at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(deps); err != nil {
				return err
			}
			return runShell(cmd, deps)
		},
	}
}

func runShell(cmd *cobra.Command, deps *Dependencies) error {
	out := cmd.OutOrStdout()
	formatter := output.NewFormatter(out)
	in := bufio.NewReader(cmd.InOrStdin())

	// Leaving the view always releases the microphone.
	defer func() {
		if deps.App.Recorder.State() != audio.StateIdle {
			_, _ = deps.App.Recorder.Stop()
			deps.App.Pending.Clear()
		}
	}()

	refreshHistory(cmd, deps, formatter)
	formatter.Transcripts(deps.App.History.Records())
	fmt.Fprintln(out, "\nType 'help' for commands.")

	for {
		fmt.Fprint(out, prompt(deps))
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			fmt.Fprintln(out)
			return nil
		}

		if err := shellCommand(cmd, deps, formatter, strings.Fields(line)); err != nil {
			if errors.Is(err, errShellExit) {
				return nil
			}
			formatter.Error(err.Error())
		}
	}
}

func prompt(deps *Dependencies) string {
	switch {
	case deps.App.Recorder.State() == audio.StateRecording:
		return "stt (recording)> "
	case deps.App.Pending.Name() != "":
		return fmt.Sprintf("stt [%s]> ", deps.App.Pending.Name())
	default:
		return "stt> "
	}
}

func shellCommand(cmd *cobra.Command, deps *Dependencies, formatter *output.Formatter, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "open", "select":
		if len(fields) < 2 {
			return errors.New("usage: open <file>")
		}
		payload, err := deps.App.SelectFile.Execute(strings.Join(fields[1:], " "))
		if err != nil {
			return userError(deps, err)
		}
		formatter.FileSelected(payload.Name)

	case "upload":
		if err := submitPending(cmd, deps, formatter); err != nil {
			return err
		}
		formatter.Transcripts(deps.App.History.Records())

	case "record":
		if err := deps.App.StartRecording.Execute(cmd.Context()); err != nil {
			return userError(deps, err)
		}
		formatter.RecordingStarted("type 'stop' to finish")

	case "stop":
		if err := stopAndSubmit(cmd, deps, formatter); err != nil {
			return err
		}
		formatter.Transcripts(deps.App.History.Records())

	case "list", "history":
		formatter.Transcripts(deps.App.History.Records())

	case "clear":
		return clearHistory(cmd, deps, formatter)

	case "logout":
		if err := deps.App.Session.Logout(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		deps.App.History.Clear()
		formatter.LoggedOut()
		return errShellExit

	case "help", "?":
		fmt.Fprintln(cmd.OutOrStdout(), shellHelp)

	case "quit", "exit", "q":
		return errShellExit

	default:
		return fmt.Errorf("unknown command %q. Type 'help' for commands", fields[0])
	}
	return nil
}
