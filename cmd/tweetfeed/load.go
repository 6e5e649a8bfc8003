package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tweetfeed/internal/config"
	"tweetfeed/internal/domain"
	"tweetfeed/internal/source"
	"tweetfeed/internal/storage"
)

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the snapshot file into the node collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runLoad(cmd.Context(), a.cfg, a.log)
			return err
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the loaded tweets as JSON, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a.cfg, a.log, func(store storage.NodeStore) error {
				return runList(cmd.Context(), store, id, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "print only the tweet with this id")
	return cmd
}

// withStore opens the node store for the duration of fn.
func withStore(cfg config.Config, log logrus.FieldLogger, fn func(storage.NodeStore) error) (err error) {
	store, err := storage.NewBadgerStore(cfg.BadgerDBPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(store)
}

// runLoad replaces the Tweets collection with the current snapshot.
func runLoad(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (n int, err error) {
	err = withStore(cfg, log, func(store storage.NodeStore) error {
		n, err = source.NewLoader(store, log).Reload(ctx, cfg.OutputPath, store)
		return err
	})
	return n, err
}

func runList(ctx context.Context, store storage.NodeStore, id string, out io.Writer) error {
	var v any
	if id != "" {
		t, err := store.GetNode(ctx, source.TypeName, id)
		if err != nil {
			return err
		}
		v = t
	} else {
		tweets, err := store.Nodes(ctx, source.TypeName)
		if err != nil {
			return err
		}
		if tweets == nil {
			tweets = []domain.Tweet{}
		}
		v = tweets
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode tweets: %w", err)
	}
	return nil
}
