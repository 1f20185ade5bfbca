package main

import (
	"context"
	"errors"

	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/services"
	"github.com/desertthunder/reminis/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthSignUp creates an account and stores its session.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.openAuth(ctx)
	if err != nil {
		return err
	}

	session, err := auth.SignUp(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("account created", "uid", session.UserID)
	return r.writePlain("✓ Account created for %s\n", session.Email)
}

// AuthLogin signs in with email and password and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.openAuth(ctx)
	if err != nil {
		return err
	}

	session, err := auth.SignIn(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("signed in", "uid", session.UserID)
	return r.writePlain("✓ Signed in as %s\n", session.Email)
}

// AuthStatus shows the current session, refreshing an expired token first.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.openAuth(ctx)
	if err != nil {
		return err
	}

	session, err := auth.Refresh(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{"authenticated": false}, cmd.Bool("pretty"))
		}
		return r.writePlain("✗ Not signed in\n")
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(statusOf(session), cmd.Bool("pretty"))
	}

	r.writePlain("✓ Signed in as %s\n", session.Email)
	r.writePlain("User ID: %s\n", session.UserID)
	if !session.Token.Expiry.IsZero() {
		r.writePlain("Token expires: %s\n", session.Token.Expiry.Local().Format(formatter.TimestampLayout))
	}
	return nil
}

func statusOf(s *services.Session) map[string]any {
	return map[string]any{
		"authenticated": true,
		"uid":           s.UserID,
		"email":         s.Email,
		"expires_at":    s.Token.Expiry,
	}
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.openAuth(ctx)
	if err != nil {
		return err
	}

	if err := auth.SignOut(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}
