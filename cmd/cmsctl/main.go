// Command cmsctl operates a storefront CMS database: migrations, seed
// imports, resync and compaction, and public page previews.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	cms "github.com/goliatone/go-storefront-cms"
)

var moduleBuilder = buildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cmsctl:", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "cmsctl",
		Usage: "Manage storefront pages, blocks and translations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or TOML config file",
				Sources: cli.EnvVars("CMS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Storage driver override (memory, sqlite, postgres)",
				Sources: cli.EnvVars("CMS_STORAGE_DRIVER"),
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "Storage DSN override",
				Sources: cli.EnvVars("CMS_STORAGE_DSN"),
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			importCommand(),
			pageCommand(),
			resyncCommand(),
			compactCommand(),
			staleCommand(),
		},
	}
}

// loadConfig applies the config file and then flag overrides.
func loadConfig(cmd *cli.Command) (cms.Config, error) {
	cfg := cms.DefaultConfig()
	if path := strings.TrimSpace(cmd.String("config")); path != "" {
		loaded, err := cms.LoadConfig(path)
		if err != nil {
			return cms.Config{}, err
		}
		cfg = loaded
	}
	if driver := strings.TrimSpace(cmd.String("driver")); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := strings.TrimSpace(cmd.String("dsn")); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	return cfg, cfg.Validate()
}

func buildModule(ctx context.Context, cfg cms.Config) (*cms.Module, error) {
	return cms.New(ctx, cfg)
}
