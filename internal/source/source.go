// Package source is the build-time data source for the site: it reads the
// tweets snapshot, normalizes it and registers every tweet as a node.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"tweetfeed/internal/domain"
	"tweetfeed/internal/normalize"
)

// TypeName is the node type tweets are registered under.
const TypeName = "Tweets"

// Collection receives normalized nodes.
type Collection interface {
	AddNode(ctx context.Context, typeName string, tweet domain.Tweet) error
}

// ReadSnapshot reads the raw results of the snapshot file at path.
func ReadSnapshot(path string) ([]domain.RawTweet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	raws, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raws, nil
}

// DecodeSnapshot decodes a snapshot document from r.
func DecodeSnapshot(r io.Reader) ([]domain.RawTweet, error) {
	var doc struct {
		Results *[]domain.RawTweet `json:"results"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Results == nil {
		return nil, errors.New("snapshot has no results array")
	}
	return *doc.Results, nil
}

// Replacer swaps a whole node type in one step.
type Replacer interface {
	ReplaceCollection(ctx context.Context, typeName string, tweets []domain.Tweet) error
}

// Loader registers snapshot tweets with a collection.
type Loader struct {
	collection Collection
	log        logrus.FieldLogger
}

// NewLoader creates a Loader that adds nodes to c.
func NewLoader(c Collection, logger logrus.FieldLogger) *Loader {
	return &Loader{
		collection: c,
		log:        logger.WithField("component", "source"),
	}
}

// Load reads the snapshot at path and registers every tweet. It returns the
// number of nodes added. A malformed tweet aborts the load before any node
// is added.
func (l *Loader) Load(ctx context.Context, path string) (int, error) {
	log := l.log.WithField("path", path)

	raws, err := ReadSnapshot(path)
	if err != nil {
		log.WithError(err).Error("Failed to read snapshot")
		return 0, err
	}
	return l.Add(ctx, raws)
}

// Reload is Load for a collection that already holds an older snapshot. The
// snapshot is read and normalized first, then r replaces the TypeName nodes
// as a whole, so a failed reload keeps the previous nodes.
func (l *Loader) Reload(ctx context.Context, path string, r Replacer) (int, error) {
	raws, err := ReadSnapshot(path)
	if err != nil {
		l.log.WithError(err).WithField("path", path).Error("Failed to read snapshot")
		return 0, err
	}
	tweets, err := l.normalize(raws)
	if err != nil {
		return 0, err
	}
	if err := r.ReplaceCollection(ctx, TypeName, tweets); err != nil {
		return 0, err
	}
	l.log.WithField("node_count", len(tweets)).Info("Tweets registered")
	return len(tweets), nil
}

// Add normalizes raws and registers them in order.
func (l *Loader) Add(ctx context.Context, raws []domain.RawTweet) (int, error) {
	tweets, err := l.normalize(raws)
	if err != nil {
		return 0, err
	}
	return l.register(ctx, tweets)
}

func (l *Loader) normalize(raws []domain.RawTweet) ([]domain.Tweet, error) {
	tweets, err := normalize.NormalizeAll(raws)
	if err != nil {
		l.log.WithError(err).Error("Snapshot contains a malformed tweet")
		return nil, err
	}
	return tweets, nil
}

func (l *Loader) register(ctx context.Context, tweets []domain.Tweet) (int, error) {
	for i, t := range tweets {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := l.collection.AddNode(ctx, TypeName, t); err != nil {
			return i, fmt.Errorf("add node %s: %w", t.ID, err)
		}
	}

	l.log.WithField("node_count", len(tweets)).Info("Tweets registered")
	return len(tweets), nil
}
