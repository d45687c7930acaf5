package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
)

var (
	email       string
	password    string
	displayName string
)

var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		p, err := a.dash.SignUp(ctx, email, password, displayName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s\n", p.Email)
		if a.dash.Session().State == session.PendingConfirmation {
			fmt.Fprintln(cmd.OutOrStdout(), "Check your inbox to confirm your email address.")
		}
		return nil
	}),
}

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		p, err := a.dash.SignIn(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", p.Email)
		return nil
	}),
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the local session",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		a.dash.SignOut(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: withApp(func(_ context.Context, a *app, cmd *cobra.Command, _ []string) error {
		snap := a.dash.Session()
		if !snap.SignedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		name := ""
		if snap.Profile != nil {
			name = snap.Profile.DisplayName
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", name, snap.Principal.Email, snap.State)
		return nil
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your display name",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		p, err := a.dash.UpdateProfile(ctx, authdomain.ProfilePatch{DisplayName: &displayName})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Display name set to %q\n", p.DisplayName)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{signUpCmd, signInCmd} {
		c.Flags().StringVar(&email, "email", "", "account email")
		c.Flags().StringVar(&password, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	signUpCmd.Flags().StringVar(&displayName, "name", "", "display name")
	profileCmd.Flags().StringVar(&displayName, "name", "", "new display name")
	_ = profileCmd.MarkFlagRequired("name")
}
