package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/chitralhive/hivekeep/internal/adapter/compressor"
	"github.com/chitralhive/hivekeep/internal/app"
	"github.com/chitralhive/hivekeep/internal/config"
	"github.com/chitralhive/hivekeep/internal/infrastructure/logger"
)

func main() {
	cliApp := &cli.App{
		Name:  "hivekeep",
		Usage: "ChitralHive database backup: pg_dump streamed through gzip with mail notification, offsite replication and retention",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "load configuration from `FILE`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Perform a single backup run (for invocation under cron)",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app.App) error {
						return a.RunOnce(ctx)
					})
				},
			},
			{
				Name:  "daemon",
				Usage: "Run with the built-in scheduler until interrupted",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app.App) error {
						return a.RunDaemon(ctx)
					})
				},
			},
			{
				Name:  "cleanup",
				Usage: "Apply the retention policy now",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app.App) error {
						return a.RunCleanup(ctx)
					})
				},
			},
			{
				Name:      "restore",
				Usage:     "Decompress a backup artifact back into plain SQL",
				ArgsUsage: "<artifact.sql.gz>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the SQL dump to `FILE` (default: artifact path without .gz)",
					},
				},
				Action: restoreAction,
			},
			{
				Name:  "authorize-drive",
				Usage: "Run the one-time Google Drive OAuth flow to obtain a refresh token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "path to the OAuth client secret JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "addr",
						Value: ":8089",
						Usage: "listen address for the OAuth callback server",
					},
				},
				Action: authorizeDriveAction,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func withApp(c *cli.Context, workflow func(context.Context, *app.App) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return workflow(ctx, application)
}

func restoreAction(c *cli.Context) error {
	source := c.Args().First()
	if source == "" {
		return fmt.Errorf("usage: hivekeep restore <artifact.sql.gz>")
	}

	dest := c.String("output")
	if dest == "" {
		if !strings.HasSuffix(source, ".gz") {
			return fmt.Errorf("cannot derive output name from %s, use --output", source)
		}
		dest = strings.TrimSuffix(source, ".gz")
	}

	if err := compressor.NewGzip().Decompress(source, dest); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	fmt.Printf("restored %s to %s\n", source, dest)
	return nil
}

func authorizeDriveAction(c *cli.Context) error {
	log, err := logger.New("info", "")
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Close()

	svc, err := app.NewGoogleOAuthService(log, c.String("client-secret"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := svc.StartAuthServer(ctx, c.String("addr")); err != nil {
		return err
	}

	log.Infof("Open http://localhost%s/auth/google/drive to authorize, Ctrl-C when done", c.String("addr"))
	<-ctx.Done()

	return svc.Shutdown(context.Background())
}
