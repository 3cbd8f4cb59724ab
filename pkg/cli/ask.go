package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a single question and print the answer",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("question is required")
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			comps, err := cfg.newComponents(ctx)
			if err != nil {
				return err
			}

			session, err := chat.New(ctx, chat.NewInput{
				Gemini:   gemini,
				Registry: comps.registry,
				Window:   int(cfg.historyWindow),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create chat session")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", session.Reply(ctx, question))
			return nil
		},
	}
}
