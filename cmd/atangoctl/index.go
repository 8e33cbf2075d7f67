package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/atango/internal/db"
	replyrepo "github.com/kailas-cloud/atango/internal/repository/reply"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the Redis reply index",
	}

	var recreate bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the FT index over reply hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := redisStore(cfg.Search)
			if err != nil {
				return err
			}
			defer store.Close()

			def, err := replyrepo.IndexDefinition(cfg.Search.Index, cfg.Search.Field)
			if err != nil {
				return err
			}
			return runIndexCreate(cmd.Context(), store, def, recreate, cmd.OutOrStdout())
		},
	}
	create.Flags().BoolVar(&recreate, "recreate", false, "drop an existing index first")

	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop the FT index (hashes are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := redisStore(cfg.Search)
			if err != nil {
				return err
			}
			defer store.Close()

			return runIndexDrop(cmd.Context(), store, cfg.Search.Index, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(create, drop)
	return cmd
}

func runIndexCreate(
	ctx context.Context, im db.IndexManager, def *db.IndexDefinition, recreate bool, out io.Writer,
) error {
	exists, err := im.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", def.Name, err)
	}

	switch {
	case exists && !recreate:
		_, err = fmt.Fprintf(out, "index %s already exists (use --recreate to rebuild it)\n", def.Name)
		return err
	case exists:
		if err := im.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop %s: %w", def.Name, err)
		}
		if _, err := fmt.Fprintf(out, "dropped index %s\n", def.Name); err != nil {
			return err
		}
	}

	err = im.CreateIndex(ctx, def)
	switch {
	case errors.Is(err, db.ErrIndexExists):
		// created concurrently between the check and FT.CREATE
		_, err = fmt.Fprintf(out, "index %s already exists\n", def.Name)
		return err
	case err != nil:
		return fmt.Errorf("create %s: %w", def.Name, err)
	}
	_, err = fmt.Fprintf(out, "created index %s\n", def.Name)
	return err
}

func runIndexDrop(ctx context.Context, im db.IndexManager, name string, out io.Writer) error {
	err := im.DropIndex(ctx, name)
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		_, err = fmt.Fprintf(out, "index %s does not exist\n", name)
		return err
	case err != nil:
		return fmt.Errorf("drop %s: %w", name, err)
	}
	_, err = fmt.Fprintf(out, "dropped index %s\n", name)
	return err
}
