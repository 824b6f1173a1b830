package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			if err := audio.CheckFFmpeg(); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install ffmpeg to record from the microphone")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			f.SetupCheck("Microphone", true, deps.Config.InputFormat+" "+deps.Config.InputDevice)

			if deps.Config.BackendURL == "" {
				f.SetupCheck("Backend URL", false, "not set. Set STT_BACKEND_URL or add backend_url to config")
				ok = false
			} else {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				err := deps.App.Backend.Ping(ctx)
				cancel()
				if err != nil {
					f.SetupCheck("Backend", false, deps.Config.BackendURL+" unreachable: "+err.Error())
					ok = false
				} else {
					f.SetupCheck("Backend", true, deps.Config.BackendURL)
				}
			}

			if deps.App.Session.IsAuthenticated() {
				f.SetupCheck("Session", true, "logged in")
			} else {
				f.SetupCheck("Session", false, "not logged in. Run 'stt login'")
				ok = false
			}

			if err := deps.App.DB.Ping(); err != nil {
				f.SetupCheck("Local storage", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Local storage", true, deps.App.DB.Path())
			}

			if ok {
				f.Success("\nAll prerequisites met. Ready to transcribe!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
