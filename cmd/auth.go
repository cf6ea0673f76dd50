package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and saves the session cookie for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}
	username := strings.TrimSpace(cmd.String("username"))
	password := cmd.String("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingArgument)
	}

	ctrl := r.newController(nil, false)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	r.logger.Info("signing in", "username", username)
	s, err := r.step(ctx, ctrl, controller.Login{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if !s.Authenticated() {
		return fmt.Errorf("%w: server did not return a session", shared.ErrNotAuthenticated)
	}

	r.saveSession()
	return r.writePlain("✓ Signed in as %s\n", s.Session.Username)
}

// AuthRegister creates an account and signs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	ctrl := r.newController(nil, false)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	ev := controller.Register{
		Username: strings.TrimSpace(cmd.String("username")),
		Email:    strings.TrimSpace(cmd.String("email")),
		Password: cmd.String("password"),
	}
	r.logger.Info("registering", "username", ev.Username, "email", ev.Email)

	s, err := r.step(ctx, ctrl, ev)
	if err != nil {
		return err
	}
	if !s.Authenticated() {
		return fmt.Errorf("%w: registration succeeded but no session was returned", shared.ErrNotAuthenticated)
	}

	r.saveSession()
	return r.writePlain("✓ Registered and signed in as %s\n", s.Session.Username)
}

// AuthLogout ends the server session and clears the stored cookies.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	if _, err := r.step(ctx, ctrl, controller.Logout{}); err != nil {
		return err
	}

	if r.jar != nil {
		if err := r.jar.Clear(); err != nil {
			r.logger.Warn("failed to clear session cookies", "error", err)
		}
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus shows the identity the server attests for the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	ctrl := r.newController(nil, false)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	s, err := ctrl.Do(ctx, controller.CheckSession{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": s.Authenticated(),
			"user":          s.Session,
		}, true)
	}

	if !s.Authenticated() {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("User:  %s\n", s.Session.Username)
	r.writePlain("Email: %s\n", s.Session.Email)
	if s.Session.IsAdmin {
		r.writePlain("Role:  admin\n")
	}
	return nil
}

// AuthImport copies the session cookie out of a browser "Copy as cURL" command.
//
// The imported session is verified with the server before it is saved.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}
	if r.jar == nil {
		return fmt.Errorf("%w: no cookie jar configured", shared.ErrServiceUnavailable)
	}

	var session *shared.CurlSession
	var err error
	if curlFile != "" {
		session, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		session, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	if session.URL != "" && r.client != nil {
		if target, err := url.Parse(session.URL); err == nil {
			if base, err := url.Parse(r.client.BaseURL()); err == nil && target.Host != base.Host {
				r.logger.Warn("cURL target differs from configured server", "curl", target.Host, "server", base.Host)
			}
		}
	}

	r.jar.Import(session.Cookies)
	r.logger.Debug("imported cookies", "count", len(session.Cookies))

	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	ctrl.Stop()

	r.saveSession()
	return r.writePlain("✓ Imported session for %s\n", s.Session.Username)
}
