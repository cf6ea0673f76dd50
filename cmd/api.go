package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the server
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: server client not initialized", shared.ErrServiceUnavailable)
	}
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return err
	}
	defer r.saveSession()
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the server
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: server client not initialized", shared.ErrServiceUnavailable)
	}
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.client.Post(ctx, path, []byte(data))
	if err != nil {
		return err
	}
	defer r.saveSession()
	return r.writeResponse(resp, true)
}

// writeResponse prints a raw response. Non-2xx statuses are still printed, then reported as an error.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		if err := r.writeJSON(resp.JSONData, pretty); err != nil {
			return err
		}
	} else {
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrApplication, resp.StatusCode)
	}
	return nil
}
