package cli

import (
	"context"

	mcpservice "github.com/mcortez-ml/nutria/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the nutrition tools over MCP (stdio)",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			comps, err := cfg.newComponents(ctx)
			if err != nil {
				return err
			}

			srv, err := mcpservice.NewServer(comps.registry, Version)
			if err != nil {
				return err
			}

			return mcpservice.Run(ctx, srv)
		},
	}
}
