package cli

import (
	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "history",
		Aliases: []string{"list", "ls"},
		Short:   "List your transcriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(deps); err != nil {
				return err
			}
			formatter := output.NewFormatter(cmd.OutOrStdout())
			refreshHistory(cmd, deps, formatter)
			formatter.Transcripts(deps.App.History.Records())
			return nil
		},
	}
}

func NewClearCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete your whole transcription history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(deps); err != nil {
				return err
			}
			formatter := output.NewFormatter(cmd.OutOrStdout())
			refreshHistory(cmd, deps, formatter)
			return clearHistory(cmd, deps, formatter)
		},
	}
}

// refreshHistory loads the list from the backend. A failure only warns; the
// list shown is whatever was there before.
func refreshHistory(cmd *cobra.Command, deps *Dependencies, formatter *output.Formatter) {
	if err := deps.App.FetchHistory.Execute(cmd.Context()); err != nil {
		formatter.Warning("Could not load transcription history")
	}
}

func clearHistory(cmd *cobra.Command, deps *Dependencies, formatter *output.Formatter) error {
	if deps.App.History.Len() == 0 {
		formatter.Info("Nothing to clear")
		return nil
	}
	if err := deps.App.ClearHistory.Execute(cmd.Context()); err != nil {
		return userError(deps, err)
	}
	formatter.HistoryCleared()
	return nil
}
