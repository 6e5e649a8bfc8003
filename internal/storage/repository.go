package storage

import (
	"context"
	"errors"

	"tweetfeed/internal/domain"
)

// ErrNodeNotFound is returned by GetNode for unknown ids.
var ErrNodeNotFound = errors.New("node not found")

// NodeStore is the queryable node collection the site layer reads from.
// Nodes are grouped by type name and keyed by tweet id within a type.
type NodeStore interface {
	// AddNode stores a node, overwriting any node with the same id.
	AddNode(ctx context.Context, typeName string, tweet domain.Tweet) error

	// GetNode returns a single node or ErrNodeNotFound.
	GetNode(ctx context.Context, typeName, id string) (domain.Tweet, error)

	// Nodes returns every node of a type, newest first.
	Nodes(ctx context.Context, typeName string) ([]domain.Tweet, error)

	// ReplaceCollection swaps every node of a type for tweets in one
	// transaction. On error the previous nodes are left untouched.
	ReplaceCollection(ctx context.Context, typeName string, tweets []domain.Tweet) error

	Close() error
}
