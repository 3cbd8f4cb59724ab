package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg    config
		offset int64
		limit  int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Number of conversations to skip",
			Destination: &offset,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of conversations to show",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "List stored conversations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			if repo == nil {
				return goerr.New("--db is required to list history")
			}
			defer repo.Close()

			convs, err := repo.ListConversations(ctx, int(offset), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list conversations")
			}

			if len(convs) == 0 {
				fmt.Fprintf(c.Root().Writer, "No conversations stored.\n")
				return nil
			}

			for _, conv := range convs {
				fmt.Fprintf(c.Root().Writer, "%s  %s  (%d turns)  %s\n",
					conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), len(conv.Turns), conv.Title)
			}
			return nil
		},
	}
}
