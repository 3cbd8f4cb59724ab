package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Version is set at build time.
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:    "nutria",
		Usage:   "Conversational nutrition assistant",
		Version: Version,
		Commands: []*cli.Command{
			chatCommand(),
			askCommand(),
			serveCommand(),
			mcpCommand(),
			planCommand(),
			historyCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
