package cli

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/client/client"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Login and store the access token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				u, err := getSimpleText(in, "Username: ", out)
				if err != nil {
					return err
				}
				username = u
			}

			var (
				password string
				err      error
			)
			if passwordStdin {
				password, err = getSimpleText(in, "", out)
			} else {
				password, err = getPassword(out)
			}
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			res, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					return errors.New("login failed: invalid credentials")
				}
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveToken(res.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(out, "Logged in as %s (token valid until %s)\n", res.Username, res.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// authError turns an auth failure into a hint to log in again.
func authError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w (session expired or invalid, run `checkpay login`)", err)
	}
	return err
}
