package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/gebo/internal"
	"github.com/starford/gebo/internal/apperr"
	pkgconfig "github.com/starford/gebo/pkg/config"
)

// loadConfig builds the effective configuration: defaults, then the
// optional YAML file, then flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("vault") {
		cfg.Vault.Path = cmd.String("vault")
	}
	if cmd.IsSet("no-backup") {
		cfg.Backup.Enabled = !cmd.Bool("no-backup")
	}
	if cmd.IsSet("acronym-min-length") {
		cfg.Match.AcronymMinLength = int(cmd.Int("acronym-min-length"))
	}
	if cmd.IsSet("inline") {
		cfg.Rewrite.Inline = cmd.Bool("inline")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runOptions(cmd *cli.Command, cfg *internal.Config) []internal.Option {
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithActiveNote(cmd.String("note")),
		internal.WithDryRun(cmd.Bool("dry-run")),
		internal.WithVerbose(cmd.Bool("verbose")),
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "note",
			Aliases: []string{"n"},
			Usage:   "Vault-relative path of the active note (single-note mode)",
		},
		&cli.BoolFlag{
			Name:  "no-backup",
			Usage: "Disable safe mode: rewrite notes without snapshotting the vault first",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report what would change without writing anything",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "gebo",
		Usage: "Cross-link Markdown notes in an Obsidian-style vault by title, keyword, and acronym",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("GEBO_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault root directory",
				Sources: cli.EnvVars("GEBO_VAULT"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Human-readable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "link",
				Usage: "Insert cross-reference links between related notes",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "acronym-min-length",
						Usage: "Minimum acronym length accepted as a match",
					},
					&cli.BoolFlag{
						Name:  "inline",
						Usage: "Also linkify occurrences of note titles inside prose",
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Run(ctx, runOptions(cmd, cfg)...)
				},
			},
			{
				Name:  "unlink",
				Usage: "Strip wikilink markup from notes, keeping display text",
				Flags: commonFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Unlink(ctx, runOptions(cmd, cfg)...)
				},
			},
			{
				Name:  "keys",
				Usage: "Print each note's derived match keys",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Keys(ctx,
						internal.WithConfig(cfg),
						internal.WithVerbose(cmd.Bool("verbose")))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("run failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, apperr.ErrBackup):
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}
}
