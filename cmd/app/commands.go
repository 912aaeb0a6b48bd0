package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/questionit/api/internal/app"
	"github.com/questionit/api/internal/config"
)

// newRootCommand assembles the questionit CLI. An explicit --env-file is loaded before
// any command reads its configuration and wins over the .env found by config.Load.
func newRootCommand(version string) *cli.Command {
	return &cli.Command{
		Name:    "questionit",
		Usage:   "QuestionIt API server and administration commands",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Sources: cli.EnvVars("QUESTIONIT_ENV_FILE"),
				Usage:   "Load environment variables from this file",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if path := cmd.String("env-file"); path != "" {
				if err := godotenv.Load(path); err != nil {
					return ctx, fmt.Errorf("failed to load env file %s: %w", path, err)
				}
			}
			return ctx, nil
		},
		Commands: getCommands(version),
	}
}

func getCommands(version string) []*cli.Command {
	cmds := getSystemCommands(version)
	cmds = append(cmds, getUserCommands()...)
	return cmds
}

// withContainer runs fn with a container built from the environment and shuts the
// container down afterwards.
func withContainer(ctx context.Context, fn func(*app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(container)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
