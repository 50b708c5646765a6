package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/chefknight/internal"
	pkgconfig "github.com/starford/chefknight/pkg/config"
)

// loadConfig reads the --config file over the defaults. A missing file is
// not an error.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg, pkgconfig.Optional()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func exec(op func(cmd *cli.Command) internal.Operation) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return internal.Exec(ctx, op(cmd), internal.WithConfig(cfg))
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "chefknight",
		Usage:  "Wiki content API over markdown files versioned in git",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, content watcher and frontend",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:  "status",
				Usage: "Print the content and repository status",
				Action: exec(func(*cli.Command) internal.Operation {
					return internal.StatusOperation()
				}),
			},
			{
				Name:  "pull",
				Usage: "Pull from the configured remote",
				Action: exec(func(*cli.Command) internal.Operation {
					return internal.PullOperation()
				}),
			},
			{
				Name:  "push",
				Usage: "Commit all changes and push them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Commit message",
						Value:   "Update via UI",
					},
				},
				Action: exec(func(cmd *cli.Command) internal.Operation {
					return internal.PushOperation(cmd.String("message"))
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
