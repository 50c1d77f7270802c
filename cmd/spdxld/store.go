package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/spdxld/codec"
	"github.com/c360studio/spdxld/storage"
)

func storeCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store and read expanded elements in the NATS KV bucket",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "put <file>",
			Short: "Expand a document and store its elements",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), g, func(ctx context.Context, app *App) error {
					_, res, err := app.Expand(args[0])
					if err != nil {
						return err
					}
					stored, published, err := app.persist(ctx, res)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "stored %d elements, published %d\n", stored, published)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <iri>",
			Short: "Print a stored element",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), g, func(ctx context.Context, app *App) error {
					rec, err := app.store.GetElement(ctx, args[0])
					if errors.Is(err, storage.ErrNotFound) {
						return fmt.Errorf("%s: %w", args[0], err)
					}
					if err != nil {
						return err
					}
					return codec.DefaultRegistry.Encode(cmd.OutOrStdout(), "json", rec)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored element IRIs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), g, func(ctx context.Context, app *App) error {
					records, err := app.store.ListElements(ctx)
					if err != nil {
						return err
					}
					for _, rec := range records {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rec.IRI, rec.StoredAt.Format(time.RFC3339))
					}
					return nil
				})
			},
		},
	)

	return cmd
}

// withStore starts an App with storage enabled and runs fn against it.
func withStore(ctx context.Context, g *globals, fn func(context.Context, *App) error) error {
	if g.cfg.Storage.URL == "" {
		return errStorageDisabled
	}
	app := NewApp(g.cfg, g.logger)
	defer app.Shutdown()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, app)
}
