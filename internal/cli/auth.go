package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cityparkhub/parkctl/internal/auth"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			user, err := a.auth.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&creds.RememberMe, "remember", false, "request a long-lived session")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var reg auth.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.auth.Register(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. You can now log in with `parkctl login`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (min 8 characters)")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm-password", "", "password confirmation")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()

			if remote {
				user, err := a.auth.Profile(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName, user.Email)
				return nil
			}

			info, err := a.auth.Identity()
			if err != nil {
				return err
			}
			if user := a.auth.CurrentUser(); user != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName, user.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", info.Email)
			}
			if info.Expired() {
				fmt.Fprintln(cmd.OutOrStdout(), "Session token has expired; log in again.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the profile from the server")
	return cmd
}

func newResetPasswordCmd(get func() *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().auth.RequestPasswordReset(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "If the address exists, a reset email is on its way.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")

	var token, newPassword string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Complete a password reset with the emailed token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().auth.VerifyPasswordReset(cmd.Context(), token, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}
	verify.Flags().StringVar(&token, "token", "", "reset token from the email")
	verify.Flags().StringVar(&newPassword, "new-password", "", "new password (min 8 characters)")
	cmd.AddCommand(verify)

	return cmd
}
