package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodtune/internal/server"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the in-memory stub server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	logger := shared.WithLogger(r.logger, "component", "server")

	stub, err := server.NewStubBackend(server.StubOpts{
		Secret:        []byte(cmd.String("secret")),
		AdminUsername: cmd.String("admin-user"),
		AdminPassword: cmd.String("admin-password"),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create stub server: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.Logging(logger))
	router.Handler(stub)

	r.writePlain("Serving moodtune stub on http://%s (admin: %s)\n", addr, cmd.String("admin-user"))
	return server.ListenAndServe(ctx, addr, router, logger)
}
