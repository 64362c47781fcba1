package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal/auth"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(app *App) error {
			password := loginPassword
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				password = strings.TrimRight(line, "\r\n")
			}

			identity, err := app.Auth.Login(cmd.Context(), auth.LoginDTO{Email: loginEmail, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", identity.Email, identity.Role)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(app *App) error {
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify the stored session with the backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(app *App) error {
			identity, err := app.Auth.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", identity.Email, identity.Role)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password, prompted when omitted")
	_ = loginCmd.MarkFlagRequired("email")
}
