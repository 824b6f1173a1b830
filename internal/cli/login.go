package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the transcription backend",
		Long:  "Exchange email and password for a session token. The token is kept in local storage until 'stt logout'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())
			email, password, err := readCredentials(cmd, email, password)
			if err != nil {
				return err
			}

			if err := deps.App.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			formatter.LoggedIn(strings.TrimSpace(email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")

	return cmd
}

func NewRegisterCmd(deps *Dependencies) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the transcription backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())
			email, password, err := readCredentials(cmd, email, password)
			if err != nil {
				return err
			}

			loggedIn, err := deps.App.Session.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if loggedIn {
				formatter.LoggedIn(strings.TrimSpace(email))
			} else {
				formatter.Success("Account created. Run 'stt login' to sign in")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")

	return cmd
}

func NewLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Session.Logout(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			output.NewFormatter(cmd.OutOrStdout()).LoggedOut()
			return nil
		},
	}
}

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())
			if deps.App.Session.IsAuthenticated() {
				formatter.Success("Logged in")
			} else {
				formatter.Warning("Not logged in. Run 'stt login'")
			}
			if url := deps.App.Backend.BaseURL(); url != "" {
				formatter.Info("Backend: " + url)
			}
			return nil
		},
	}
}

func promptLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readCredentials prompts for whichever of email and password was not given
// as a flag.
func readCredentials(cmd *cobra.Command, email, password string) (string, string, error) {
	stdin := cmd.InOrStdin()
	in := bufio.NewReader(stdin)

	var err error
	if email == "" {
		if email, err = promptLine(in, cmd.OutOrStdout(), "Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = promptPassword(stdin, in, cmd.OutOrStdout(), "Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

// promptPassword hides the input when the command reads from a terminal.
func promptPassword(stdin io.Reader, in *bufio.Reader, out io.Writer, label string) (string, error) {
	if f, ok := stdin.(*os.File); ok && in.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return promptLine(in, out, label)
}
