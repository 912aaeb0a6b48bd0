package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/questionit/api/cmd/app/commands"
	"github.com/questionit/api/internal/app"
)

func getUserCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a user account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "slug",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Unique user slug",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name",
				},
				&cli.StringFlag{
					Name:    "twitter-id",
					Aliases: []string{"t"},
					Usage:   "Linked Twitter account ID",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateUser(
						ctx,
						userUseCase,
						container.Logger(),
						commands.Stdout,
						cmd.String("slug"),
						cmd.String("name"),
						cmd.String("twitter-id"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "create-session",
			Usage: "Issue a first-party credential for a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					sessionUseCase, err := container.SessionUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateSession(
						ctx,
						sessionUseCase,
						container.Logger(),
						commands.Stdout,
						cmd.String("user-id"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
