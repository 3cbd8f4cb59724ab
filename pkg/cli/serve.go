package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcortez-ml/nutria/pkg/server"
	"github.com/mcortez-ml/nutria/pkg/service/voice"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address for the HTTP API",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("NUTRIA_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			comps, err := cfg.newComponents(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			if repo != nil {
				defer repo.Close()
			}

			serverConfig := server.DefaultConfig()
			serverConfig.Addr = addr

			srv := server.New(server.Deps{
				Gemini:   gemini,
				Registry: comps.registry,
				Repo:     repo,
				Catalog:  comps.catalog,
				Scorer:   comps.scorer,
				Diet:     comps.diet,
				Bridge:   voice.NewBridge(gemini),
				Window:   int(cfg.historyWindow),
			}, serverConfig)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
