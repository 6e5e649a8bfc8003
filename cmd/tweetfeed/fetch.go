package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tweetfeed/internal/config"
	"tweetfeed/internal/fetcher"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download tweets and write the snapshot file",
		Long: `Exchange the API credentials for a bearer token, run the configured search
and write the raw results to the snapshot file. The file is only replaced
after the whole fetch succeeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), a.cfg, a.log)
		},
	}
}

func runFetch(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	f := fetcher.New(fetcher.Options{
		APIKey:       cfg.TwitterAPIKey,
		APISecretKey: cfg.TwitterAPISecretKey,
		TokenURL:     cfg.TokenURL,
		SearchURL:    cfg.SearchURL,
		Query:        cfg.Query,
		FromDate:     cfg.FromDate,
		MaxResults:   cfg.MaxResults,
	}, &http.Client{Timeout: cfg.HTTPTimeout}, log)

	result, err := f.FetchTweets(ctx)
	if err != nil {
		log.WithError(err).Error("Writing tweets to file failed")
		return err
	}

	if err := fetcher.WriteSnapshot(cfg.OutputPath, result); err != nil {
		log.WithError(err).Error("Writing tweets to file failed")
		return err
	}

	log.WithFields(logrus.Fields{
		"path":        cfg.OutputPath,
		"tweet_count": len(result.Tweets),
	}).Info("Tweets written to file")
	return nil
}
