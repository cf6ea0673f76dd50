// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/urfave/cli/v3"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, csv, markdown, txt",
		Value:   formatter.FormatText,
	}
}

func limitFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of rows to fetch",
		Value:   value,
	}
}

// setupCommand handles setup operations for configuration and the local cache.
func setupCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Flags:  []cli.Flag{configFlag},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the local cache and run migrations",
				Flags:  []cli.Flag{configFlag},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the server session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session cookie",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("MOODTUNE_PASSWORD"), Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account, then sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("MOODTUNE_PASSWORD")},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "End the session and forget the cookie",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "import",
				Usage: "Import a browser session from a cURL command (DevTools > Copy as cURL)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "curl", Usage: "cURL command"},
					&cli.StringFlag{Name: "curl-file", Usage: "Path to .sh file containing cURL command"},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// captureCommand grabs a frame, asks the server for its emotion and shows the recommendations.
func captureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Detect your emotion from the camera and recommend songs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "frame", Usage: "Image file to use as the camera frame (overrides media.frame_path)"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Capture,
	}
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Recommend songs for an emotion",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "emotion"},
		},
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Recommend,
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorite songs",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.FavoritesList,
			},
			{
				Name:  "add",
				Usage: "Add a song to favorites",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "emotion", Usage: "Look the song up in this emotion's recommendations"},
				},
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a song from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
		},
	}
}

func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prefs",
		Aliases: []string{"preferences"},
		Usage:   "Show or change listening preferences",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show preferences",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.PrefsGet,
			},
			{
				Name:  "set",
				Usage: "Save preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genre", Usage: "Preferred genre"},
					&cli.StringFlag{Name: "artist", Usage: "Preferred artist"},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show emotion and listening history",
		Commands: []*cli.Command{
			{
				Name:   "emotions",
				Usage:  "Recent emotion captures, newest first",
				Flags:  []cli.Flag{formatFlag(), limitFlag(20)},
				Action: r.HistoryEmotions,
			},
			{
				Name:   "listening",
				Usage:  "Recently played songs, newest first",
				Flags:  []cli.Flag{formatFlag(), limitFlag(20)},
				Action: r.HistoryListening,
			},
		},
	}
}

func mostPlayedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "most-played",
		Usage:  "Songs you played most",
		Flags:  []cli.Flag{formatFlag(), limitFlag(10)},
		Action: r.MostPlayed,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Emotion capture distribution",
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Stats,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a song from favorites, recommendations or the local cache",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "emotion", Usage: "Look the song up in this emotion's recommendations"},
			&cli.BoolFlag{Name: "detach", Usage: "Return once playback starts"},
		},
		Action: r.Play,
	}
}

func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a song to the catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}},
			&cli.StringFlag{Name: "emotion", Aliases: []string{"e"}, Usage: "Emotion tag"},
			&cli.FloatFlag{Name: "valence", Value: 0.5},
			&cli.FloatFlag{Name: "energy", Value: 0.5},
		},
		Action: r.Upload,
	}
}

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "admin",
		Usage:  "Open the admin panel in the browser (admins only)",
		Action: r.Admin,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export favorites, histories and stats to files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown, txt", Value: formatter.FormatJSON},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
			&cli.StringSliceFlag{Name: "section", Usage: "Sections to export (repeatable; default all)"},
			&cli.IntFlag{Name: "workers", Value: 3},
			&cli.FloatFlag{Name: "rate", Usage: "Requests per second", Value: 5},
			limitFlag(50),
		},
		Action: r.Export,
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local cache",
		Commands: []*cli.Command{
			{
				Name:  "songs",
				Usage: "Songs seen in recommendations and favorites",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "emotion", Usage: "Filter by emotion tag"},
					&cli.StringFlag{Name: "source", Usage: "Filter by list: recommendations or favorites"},
					limitFlag(50),
					formatFlag(),
				},
				Action: r.CacheSongs,
			},
			{
				Name:  "captures",
				Usage: "Journal of emotion captures",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "Filter by username"},
					&cli.StringFlag{Name: "emotion", Usage: "Filter by emotion"},
					&cli.BoolFlag{Name: "stats", Usage: "Show the distribution instead of rows"},
					limitFlag(50),
					formatFlag(),
				},
				Action: r.CacheCaptures,
			},
		},
	}
}

func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Write an HTML snapshot of the signed-in view",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "moodtune.html"},
			&cli.StringFlag{Name: "section", Usage: "dashboard, detection or favorites", Value: "dashboard"},
			&cli.StringFlag{Name: "emotion", Usage: "Include recommendations for this emotion"},
			&cli.BoolFlag{Name: "open", Usage: "Open the snapshot in the browser"},
		},
		Action: r.Render,
	}
}

// apiCommand handles direct server calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the recommendation server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output compact JSON", Value: true},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON body to send", Required: true},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the in-memory stub server for development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "127.0.0.1:5000"},
			&cli.StringFlag{Name: "admin-user", Value: "admin"},
			&cli.StringFlag{Name: "admin-password", Sources: cli.EnvVars("MOODTUNE_ADMIN_PASSWORD"), Value: "admin"},
			&cli.StringFlag{Name: "secret", Sources: cli.EnvVars("MOODTUNE_SESSION_SECRET"), Usage: "Session signing key"},
		},
		Action: r.Serve,
	}
}
