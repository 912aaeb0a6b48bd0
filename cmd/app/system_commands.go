package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/questionit/api/cmd/app/commands"
	"github.com/questionit/api/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and background jobs",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Apply this many migrations, negative to roll back (default: all pending)",
				},
				&cli.StringFlag{
					Name:  "dir",
					Value: "migrations",
					Usage: "Directory holding the postgresql and mysql migration folders",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString,
						commands.MigrateOptions{
							Dir:   cmd.String("dir"),
							Steps: int(cmd.Int("steps")),
						})
				})
			},
		},
		{
			Name:  "sweep-expired",
			Usage: "Delete expired sessions and stale handshake tokens",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "grace",
					Aliases: []string{"g"},
					Usage:   "Only delete rows expired for longer than this duration",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Show how many rows would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					sessionUseCase, err := container.SessionUseCase()
					if err != nil {
						return err
					}
					return commands.RunSweepExpired(
						ctx,
						sessionUseCase,
						container.Logger(),
						commands.Stdout,
						cmd.Duration("grace"),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "reload-moderation",
			Usage: "Ask running servers to reload the muted-words dictionary and ban list",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunReloadModeration(
						ctx,
						container.ModerationRefresher(),
						container.Logger(),
						commands.Stdout,
					)
				})
			},
		},
	}
}
