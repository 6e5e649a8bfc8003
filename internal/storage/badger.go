package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"tweetfeed/internal/domain"
)

var _ NodeStore = (*BadgerStore)(nil)

// BadgerStore implements NodeStore on BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerStore opens (or creates) the database at dbPath.
func NewBadgerStore(dbPath string, logger logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.Info("BadgerDB opened successfully at path: ", dbPath)

	return &BadgerStore{
		db:  db,
		log: logger.WithField("component", "node_store"),
	}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	s.log.Info("Closing BadgerDB...")
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	s.log.Info("BadgerDB closed.")
	return nil
}

// Format: node:{typeName}:{id}
func nodeKey(typeName, id string) []byte {
	return []byte(fmt.Sprintf("node:%s:%s", typeName, id))
}

// Format: node:{typeName}:
func typePrefix(typeName string) []byte {
	return []byte(fmt.Sprintf("node:%s:", typeName))
}

// AddNode stores the tweet under its id.
func (s *BadgerStore) AddNode(ctx context.Context, typeName string, tweet domain.Tweet) error {
	log := s.log.WithFields(logrus.Fields{
		"type": typeName,
		"id":   tweet.ID,
	})

	data, err := json.Marshal(tweet)
	if err != nil {
		log.WithError(err).Error("Failed to marshal node to JSON")
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(nodeKey(typeName, tweet.ID), data))
	})
	if err != nil {
		log.WithError(err).Error("Failed to save node to BadgerDB")
		return fmt.Errorf("failed to save node %s: %w", tweet.ID, err)
	}

	log.Debug("Node saved")
	return nil
}

// GetNode loads a single node.
func (s *BadgerStore) GetNode(ctx context.Context, typeName, id string) (domain.Tweet, error) {
	var tweet domain.Tweet
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(typeName, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tweet)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Tweet{}, fmt.Errorf("%s %s: %w", typeName, id, ErrNodeNotFound)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to read node from BadgerDB")
		return domain.Tweet{}, fmt.Errorf("failed to get node %s: %w", id, err)
	}
	return tweet, nil
}

// Nodes returns all nodes of typeName sorted by CreatedAt, newest first.
func (s *BadgerStore) Nodes(ctx context.Context, typeName string) ([]domain.Tweet, error) {
	log := s.log.WithField("type", typeName)

	var tweets []domain.Tweet
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := typePrefix(typeName)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var t domain.Tweet
				if err := json.Unmarshal(val, &t); err != nil {
					return fmt.Errorf("failed to unmarshal node for key %s: %w", string(item.Key()), err)
				}
				tweets = append(tweets, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to retrieve nodes from BadgerDB")
		return nil, fmt.Errorf("failed to list %s nodes: %w", typeName, err)
	}

	sort.SliceStable(tweets, func(i, j int) bool {
		return tweets[i].CreatedAt > tweets[j].CreatedAt
	})

	log.WithField("node_count", len(tweets)).Debug("Nodes retrieved")
	return tweets, nil
}

// ReplaceCollection deletes the existing nodes of typeName and writes tweets
// within a single read-write transaction.
func (s *BadgerStore) ReplaceCollection(ctx context.Context, typeName string, tweets []domain.Tweet) error {
	log := s.log.WithFields(logrus.Fields{
		"type":       typeName,
		"node_count": len(tweets),
	})

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := typePrefix(typeName)

		var stale [][]byte
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, t := range tweets {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to marshal node %s: %w", t.ID, err)
			}
			if err := txn.SetEntry(badger.NewEntry(nodeKey(typeName, t.ID), data)); err != nil {
				return fmt.Errorf("failed to save node %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to replace collection")
		return fmt.Errorf("failed to replace %s collection: %w", typeName, err)
	}

	log.Info("Collection replaced")
	return nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
