package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun/dialect"
	"github.com/urfave/cli/v3"

	cms "github.com/goliatone/go-storefront-cms"
	"github.com/goliatone/go-storefront-cms/internal/importer"
	"github.com/goliatone/go-storefront-cms/internal/migrations"
)

var errArgument = errors.New("missing argument")

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if strings.EqualFold(cfg.Storage.Driver, cms.StorageMemory) {
				return fmt.Errorf("migrate: memory storage has no schema")
			}
			// The module applies migrations while opening storage.
			cfg.Storage.AutoMigrate = true
			module, err := moduleBuilder(ctx, cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			db := module.Container().DB()
			name := migrations.DialectSQLite
			if db.Dialect().Name() == dialect.PG {
				name = migrations.DialectPostgres
			}
			version, dirty, err := migrations.Version(db.DB, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import seed pages from Markdown frontmatter documents",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pattern", Usage: "File name glob (defaults to the config importer pattern)"},
			&cli.BoolFlag{Name: "prune", Usage: "Delete blocks that a document no longer lists"},
			&cli.BoolFlag{Name: "watch", Usage: "Keep running and re-import files as they change"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := cfg.Importer.Dir
			if arg := strings.TrimSpace(cmd.Args().First()); arg != "" {
				dir = arg
			}
			opts := importer.Options{Pattern: cfg.Importer.Pattern, Prune: cmd.Bool("prune")}
			if pattern := strings.TrimSpace(cmd.String("pattern")); pattern != "" {
				opts.Pattern = pattern
			}

			module, err := moduleBuilder(ctx, cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			res, err := module.Importer().ImportDir(ctx, os.DirFS(dir), opts)
			if encodeErr := writeJSON(out(cmd), res); encodeErr != nil {
				return encodeErr
			}
			if err != nil || !cmd.Bool("watch") {
				return err
			}
			return module.Importer().Watch(ctx, dir, opts, func(ev importer.WatchEvent) {
				if ev.Err != nil {
					fmt.Fprintf(out(cmd), "%s: %v\n", ev.Path, ev.Err)
					return
				}
				fmt.Fprintf(out(cmd), "%s: imported\n", ev.Path)
			})
		},
	}
}

func pageCommand() *cli.Command {
	return &cli.Command{
		Name:      "page",
		Usage:     "Print the public view of a page as JSON",
		ArgsUsage: "<slug>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Usage: "Locale to render (defaults to the default locale)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			slug := strings.TrimSpace(cmd.Args().First())
			if slug == "" {
				return fmt.Errorf("page: %w: slug", errArgument)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			locale := cmd.String("locale")
			if strings.TrimSpace(locale) == "" {
				locale = cfg.DefaultLocale
			}
			module, err := moduleBuilder(ctx, cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			view, err := module.GetPublicPage(ctx, slug, locale)
			if err != nil {
				return err
			}
			return writeJSON(out(cmd), view)
		},
	}
}

func resyncCommand() *cli.Command {
	return &cli.Command{
		Name:      "resync",
		Usage:     "Re-merge every block translation of a page against its base content",
		ArgsUsage: "<page-id>",
		Action: withPage(func(ctx context.Context, cmd *cli.Command, module *cms.Module, pageID uuid.UUID) error {
			report, err := module.Translations().ResyncPage(ctx, pageID)
			if encodeErr := writeJSON(out(cmd), map[string]any{"synced": report.Synced, "failed": len(report.Failed)}); encodeErr != nil {
				return encodeErr
			}
			return err
		}),
	}
}

func compactCommand() *cli.Command {
	return &cli.Command{
		Name:      "compact",
		Usage:     "Rewrite block translations of a page to hold translatable text only",
		ArgsUsage: "<page-id>",
		Action: withPage(func(ctx context.Context, cmd *cli.Command, module *cms.Module, pageID uuid.UUID) error {
			n, err := module.Translations().CompactBlockTranslations(ctx, pageID)
			if err != nil {
				return err
			}
			return writeJSON(out(cmd), map[string]int{"rewritten": n})
		}),
	}
}

func staleCommand() *cli.Command {
	return &cli.Command{
		Name:      "stale",
		Usage:     "List block translations that are behind their block or failed to sync",
		ArgsUsage: "<page-id>",
		Action: withPage(func(ctx context.Context, cmd *cli.Command, module *cms.Module, pageID uuid.UUID) error {
			rows, err := module.Translations().ListStaleBlockTranslations(ctx, pageID)
			if err != nil {
				return err
			}
			return writeJSON(out(cmd), rows)
		}),
	}
}

type pageAction func(ctx context.Context, cmd *cli.Command, module *cms.Module, pageID uuid.UUID) error

func withPage(action pageAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		raw := strings.TrimSpace(cmd.Args().First())
		if raw == "" {
			return fmt.Errorf("%s: %w: page id", cmd.Name, errArgument)
		}
		pageID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: page id: %w", cmd.Name, err)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		module, err := moduleBuilder(ctx, cfg)
		if err != nil {
			return err
		}
		defer module.Close()
		return action(ctx, cmd, module, pageID)
	}
}

func out(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
