package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/atango/internal/app"
	"github.com/kailas-cloud/atango/internal/domain/message"
	replyuc "github.com/kailas-cloud/atango/internal/usecase/reply"
)

// responder is the consumer interface for ask (ISP).
type responder interface {
	Respond(ctx context.Context, utterance string) (replyuc.Response, error)
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <utterance>...",
		Short: "Run the reply engine on one utterance and print the choice",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := app.NewSearchStore(cfg.Search)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := store.WaitForReady(ctx, time.Duration(cfg.Search.ReadinessTimeout)*time.Second); err != nil {
				return err
			}

			engine := app.NewEngine(cfg, store, logger)
			return runAsk(ctx, engine, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

func runAsk(ctx context.Context, r responder, utterance string, out io.Writer) error {
	resp, err := r.Respond(ctx, utterance)
	if err != nil {
		return err
	}

	switch resp.Message.Kind() {
	case message.KindImage:
		_, err = fmt.Fprintf(out, "%s\t%s\n", resp.Branch, resp.Message.URL())
	default:
		_, err = fmt.Fprintf(out, "%s\t%s\n", resp.Branch, resp.Message.Body())
	}
	return err
}
