package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/atango/internal/db"
	replyrepo "github.com/kailas-cloud/atango/internal/repository/reply"
)

// hashWriter is the consumer interface for seed (ISP).
type hashWriter interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "seed <replies.jsonl>",
		Short: "Load reply records into Redis hashes under the index prefix",
		Long: `Each line is one JSON record: {"id","q1","text","quoted_by"}.
q1 must already be tokenized with spaces between terms. quoted_by is either the
list of quoting posts or a count. With --replace, existing hashes of the seeded
ids are deleted first so stale fields do not linger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := redisStore(cfg.Search)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return runSeed(cmd.Context(), store, seedTarget{
				index:   cfg.Search.Index,
				field:   cfg.Search.Field,
				replace: replace,
			}, f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing hashes of the seeded ids first")
	return cmd
}

type seedTarget struct {
	index   string
	field   string
	replace bool
}

func runSeed(ctx context.Context, w hashWriter, target seedTarget, in io.Reader, out io.Writer) error {
	records, err := replyrepo.ReadRecords(in)
	if err != nil {
		return err
	}

	n, err := replyrepo.NewSeeder(w, target.index, target.field).
		WithReplace(target.replace).
		Write(ctx, records)
	if err != nil {
		return fmt.Errorf("after %d records: %w", n, err)
	}
	_, err = fmt.Fprintf(out, "seeded %d records into %s\n", n, target.index)
	return err
}
