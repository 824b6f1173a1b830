package cli

import (
	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func NewUploadCmd(deps *Dependencies) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Transcribe an MP3 or WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(deps); err != nil {
				return err
			}
			formatter := output.NewFormatter(cmd.OutOrStdout())

			refreshHistory(cmd, deps, formatter)

			payload, err := deps.App.SelectFile.Execute(args[0])
			if err != nil {
				return userError(deps, err)
			}
			formatter.FileSelected(payload.Name)

			if err := submitPending(cmd, deps, formatter); err != nil {
				return err
			}
			if !quiet {
				formatter.Transcripts(deps.App.History.Records())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the new transcription")

	return cmd
}

// submitPending uploads the pending payload and prints the result.
func submitPending(cmd *cobra.Command, deps *Dependencies, formatter *output.Formatter) error {
	if name := deps.App.Pending.Name(); name != "" {
		formatter.Transcribing(name)
	}
	record, err := deps.App.Upload.ExecutePending(cmd.Context())
	if err != nil {
		return userError(deps, err)
	}
	formatter.TranscribeDone(record)
	return nil
}
