// Package db defines the storage contract the Redis driver implements.
package db

import (
	"context"
	"time"

	"github.com/leadex-cloud/leadex/internal/domain/filter"
)

// Store is the database facade. Consumers depend on narrow sub-interfaces.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides filtered KNN search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery is the input for a filtered vector similarity search.
type KNNQuery struct {
	IndexName string
	Filters   filter.Filter
	Vector    []float32
	K         int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// IndexFieldType enumerates FT index field types.
type IndexFieldType string

// Supported field types.
const (
	IndexFieldTag     IndexFieldType = "tag"
	IndexFieldNumeric IndexFieldType = "numeric"
	IndexFieldText    IndexFieldType = "text"
	IndexFieldVector  IndexFieldType = "vector"
)

// VectorDistance enumerates distance metrics.
type VectorDistance string

// Supported distance metrics.
const (
	DistanceCosine VectorDistance = "COSINE"
	DistanceL2     VectorDistance = "L2"
)

// IndexField describes one field in an FT index schema.
type IndexField struct {
	Name              string
	Type              IndexFieldType
	TagSeparator      string
	VectorDim         int
	VectorDistance    VectorDistance
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}
