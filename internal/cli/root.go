package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/config"
	"github.com/manish3-4/speech-to-text-frontend/internal/app"
	"github.com/manish3-4/speech-to-text-frontend/internal/backend"
	"github.com/manish3-4/speech-to-text-frontend/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stt",
		Short: "Upload or record audio and get it transcribed",
		Long:  "A client for the speech-to-text backend: log in, upload an MP3/WAV file or record from the microphone, and keep a running history of transcriptions.",
		// main prints the error once through the formatter.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewLoginCmd(deps))
	rootCmd.AddCommand(NewRegisterCmd(deps))
	rootCmd.AddCommand(NewLogoutCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))
	rootCmd.AddCommand(NewUploadCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewClearCmd(deps))
	rootCmd.AddCommand(NewAppCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

// requireSession stands in for the login redirect: commands that need a
// session refuse to run without one.
func requireSession(deps *Dependencies) error {
	return deps.App.Session.Require()
}

// userError turns a failed action into the message shown to the user.
func userError(deps *Dependencies, err error) error {
	msg := deps.App.Status.MessageFor(err)
	if msg == "" {
		msg = err.Error()
	}
	if errors.Is(err, backend.ErrUnauthorized) {
		msg += " Your session may have expired; run 'stt login' again."
	}
	return errors.New(msg)
}
