// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// globalFlags are accepted by every command.
func (r *Runner) globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("REMINIS_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the collection in memory for this run only",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

func jsonFlags(pretty bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: pretty,
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the SQLite database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// photosCommand handles the photo journal.
func photosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "photos",
		Aliases: []string{"p"},
		Usage:   "Capture, browse and manage memories",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Capture an image with its location, address and weather",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: append([]cli.Flag{
					&cli.FloatFlag{
						Name:    "lat",
						Aliases: []string{"latitude"},
						Usage:   "Latitude of the capture in decimal degrees",
					},
					&cli.FloatFlag{
						Name:    "lon",
						Aliases: []string{"longitude"},
						Usage:   "Longitude of the capture in decimal degrees",
					},
				}, jsonFlags(false)...),
				Action: r.PhotosAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List memories, newest first",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of memories to list (0 for all)",
					},
				}, jsonFlags(false)...),
				Action: r.PhotosList,
			},
			{
				Name:  "show",
				Usage: "Show one memory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(true),
				Action: r.PhotosShow,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a memory and its image",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PhotosDelete,
			},
			{
				Name:  "save",
				Usage: "Save a memory's image to the media library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PhotosSave,
			},
			{
				Name:  "open",
				Usage: "Open a memory's image with the system viewer",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PhotosOpen,
			},
			{
				Name:   "clusters",
				Usage:  "Group located memories by place",
				Flags:  jsonFlags(false),
				Action: r.PhotosClusters,
			},
			{
				Name:  "export",
				Usage: "Export the journal document and images to a directory",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Journal document format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: reminis_export_{epoch})",
					},
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Export only these memories (repeatable)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent image copies",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Image copies per second (0 for unlimited)",
					},
				}, jsonFlags(true)...),
				Action: r.PhotosExport,
			},
			{
				Name:  "import",
				Usage: "Import memories from an export directory or a folder of JPEGs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "dir"},
				},
				Action: r.PhotosImport,
			},
		},
	}
}

// serveCommand runs the local HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the photo journal over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "read-only",
				Usage: "Disable uploads through POST /photos",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles account operations against the identity backend
func authCommand(r *Runner) *cli.Command {
	credentials := []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Account password",
			Sources: cli.EnvVars("REMINIS_PASSWORD"),
		},
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account session",
		Commands: []*cli.Command{
			{
				Name:   "signup",
				Usage:  "Create an account and sign in",
				Flags:  credentials,
				Action: r.AuthSignUp,
			},
			{
				Name:   "login",
				Usage:  "Sign in with email and password",
				Flags:  credentials,
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current session, refreshing an expired token",
				Flags:  jsonFlags(true),
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the current session",
				Action: r.AuthLogout,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing the journal.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive gallery",
		Action:  r.TUI,
	}
}
