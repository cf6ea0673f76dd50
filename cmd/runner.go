package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	backend    services.Backend
	jar        *services.FileJar
	camera     media.Camera
	player     media.Player
	browser    controller.Browser
	journal    controller.Journal
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	Backend    services.Backend // defaults to Client
	Jar        *services.FileJar
	Camera     media.Camera
	Player     media.Player // resolved from config on first use when nil
	Browser    controller.Browser
	Journal    controller.Journal
	Logger     *log.Logger
	Output     io.Writer
}

// systemBrowser opens URLs with the platform's default handler.
type systemBrowser struct{}

func (systemBrowser) Open(url string) error { return shared.OpenBrowser(url) }

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Backend == nil && opts.Client != nil {
		opts.Backend = opts.Client
	}
	if opts.Camera == nil {
		opts.Camera = media.NewFrameCamera(opts.Config.Media.FramePath)
	}
	if opts.Browser == nil {
		opts.Browser = systemBrowser{}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		backend:    opts.Backend,
		jar:        opts.Jar,
		camera:     opts.Camera,
		player:     opts.Player,
		browser:    opts.Browser,
		journal:    opts.Journal,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the logger, e.g. to keep log lines out of the terminal while the TUI runs.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.client != nil {
		r.client.SetLogger(logger)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, captureCommand, recommendCommand, favoritesCommand, prefsCommand,
		historyCommand, mostPlayedCommand, statsCommand, playCommand, uploadCommand, adminCommand,
		exportCommand, cacheCommand, renderCommand, apiCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireBackend() error {
	if r.backend == nil {
		return fmt.Errorf("%w: server client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) resolvePlayer() (media.Player, error) {
	if r.player != nil {
		return r.player, nil
	}
	command, args, err := media.ResolvePlayer(r.config.Media.Player)
	if err != nil {
		return nil, err
	}
	r.player = media.NewCommandPlayer(command, args, r.logger)
	return r.player, nil
}

// missingPlayer reports why no audio player could be resolved whenever a song is played.
type missingPlayer struct{ err error }

func (m missingPlayer) Play(context.Context, string) error { return m.err }
func (m missingPlayer) Stop() error                        { return nil }

func (r *Runner) settings(ttl bool) controller.Settings {
	settings := controller.DefaultSettings()
	if n := r.config.Dashboard.HistoryLimit; n > 0 {
		settings.HistoryLimit = n
	}
	if n := r.config.Dashboard.MostPlayedLimit; n > 0 {
		settings.MostPlayedLimit = n
	}
	if ttl {
		settings.NoticeTTL = r.config.Notifications.TTLDuration()
	}
	return settings
}

// newController wires a controller to the runner's dependencies. Notification expiry is only enabled for
// interactive surfaces since it keeps the controller from settling.
func (r *Runner) newController(surface controller.Surface, interactive bool) *controller.Controller {
	player, err := r.resolvePlayer()
	if err != nil {
		player = missingPlayer{err: err}
	}

	deps := controller.Deps{
		Backend:     r.backend,
		Camera:      r.camera,
		Player:      player,
		Browser:     r.browser,
		Journal:     r.journal,
		JPEGQuality: r.config.Media.JPEGQuality,
	}
	return controller.New(deps, surface, controller.Options{Settings: r.settings(interactive), Logger: r.logger})
}

// session starts a headless controller and restores the saved session.
//
// The caller owns the returned controller and must Stop it.
func (r *Runner) session(ctx context.Context, surface controller.Surface) (*controller.Controller, controller.State, error) {
	if err := r.requireBackend(); err != nil {
		return nil, controller.State{}, err
	}

	ctrl := r.newController(surface, false)
	ctrl.Start(ctx)

	s, err := ctrl.Do(ctx, controller.CheckSession{})
	if err != nil {
		ctrl.Stop()
		return nil, s, err
	}
	if !s.Authenticated() {
		ctrl.Stop()
		return nil, s, fmt.Errorf("%w: run 'moodtune auth login' first", shared.ErrNotAuthenticated)
	}
	return ctrl, s, nil
}

// step dispatches ev, waits for it to settle and turns any error notification it raised into an error.
func (r *Runner) step(ctx context.Context, ctrl *controller.Controller, ev controller.Event) (controller.State, error) {
	before := ctrl.State()
	s, err := ctrl.Do(ctx, ev)
	if err != nil {
		return s, err
	}
	return s, raised(before, s)
}

// raised returns the first error notification added between before and after.
func raised(before, after controller.State) error {
	for _, n := range after.Notifications {
		if n.ID > before.NextNotice && n.Level == controller.LevelError {
			return errors.New(n.Message)
		}
	}
	return nil
}

// saveSession persists the cookie jar so the next invocation reuses the session.
func (r *Runner) saveSession() {
	if r.jar == nil {
		return
	}
	if err := r.jar.Save(); err != nil {
		r.logger.Warn("failed to save session cookies", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeTable renders t in format to the runner's output.
func (r *Runner) writeTable(t formatter.Table, format string) error {
	data, err := formatter.Render(t, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}
