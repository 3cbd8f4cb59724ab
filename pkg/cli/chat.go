package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Continue a stored conversation (requires --db)",
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with the nutrition assistant",
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

			session, err := chat.New(ctx, chat.NewInput{
				Gemini:         gemini,
				Registry:       comps.registry,
				Repo:           repo,
				ConversationID: model.ConversationID(conversationID),
				Window:         int(cfg.historyWindow),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create chat session")
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "NutrIA listo. Escribe 'exit' para salir.\n")

			wait := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			wait.Suffix = " pensando..."

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				if message == "exit" {
					break
				}
				if message == "" {
					continue
				}

				wait.Start()
				reply := session.Reply(ctx, message)
				wait.Stop()

				fmt.Fprintf(c.Root().Writer, "%s\n", reply)
			}

			fmt.Fprintf(c.Root().Writer, "\nHasta pronto.\n")
			return nil
		},
	}
}
