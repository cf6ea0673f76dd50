package media

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/shared"
)

// Player binds a song URL to the audio output. Playing a new URL replaces the current one.
type Player interface {
	Play(ctx context.Context, url string) error
	Stop() error
}

// knownPlayers are tried in order when no player command is configured.
var knownPlayers = [][]string{
	{"mpv", "--no-video", "--really-quiet"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"cvlc", "--play-and-exit", "--quiet"},
}

// ResolvePlayer returns the configured command or the first known player found on PATH.
func ResolvePlayer(command string) (string, []string, error) {
	if command != "" {
		return command, nil, nil
	}
	for _, p := range knownPlayers {
		if path, err := exec.LookPath(p[0]); err == nil {
			return path, p[1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: no audio player found (install mpv or ffplay, or set media.player)", shared.ErrPlaybackFailed)
}

// CommandPlayer plays songs by running an external audio player with the song URL as its last argument.
type CommandPlayer struct {
	mu      sync.Mutex
	command string
	args    []string
	current *exec.Cmd
	done    chan struct{}
	logger  *log.Logger
}

func NewCommandPlayer(command string, args []string, logger *log.Logger) *CommandPlayer {
	return &CommandPlayer{command: command, args: args, logger: logger}
}

// Play stops any running song and starts url. It returns once the player process has started.
func (p *CommandPlayer) Play(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	args := append(append([]string{}, p.args...), url)
	cmd := exec.Command(p.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlaybackFailed, err)
	}

	done := make(chan struct{})
	p.current, p.done = cmd, done

	go func() {
		err := cmd.Wait()
		if err != nil && p.logger != nil {
			p.logger.Debug("player exited", "url", url, "error", err)
		}
		close(done)
	}()
	return nil
}

// Stop kills the running player, if any, and waits for it to exit.
func (p *CommandPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Wait blocks until the running player exits or ctx ends. It returns immediately when nothing is playing.
func (p *CommandPlayer) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Playing reports whether a player process is still running.
func (p *CommandPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *CommandPlayer) stopLocked() {
	if p.current == nil {
		return
	}
	select {
	case <-p.done:
	default:
		_ = p.current.Process.Kill()
		<-p.done
	}
	p.current, p.done = nil, nil
}
