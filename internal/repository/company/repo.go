// Package company adapts the Redis store into the company index contract:
// vector upsert plus filtered nearest-neighbor search returning matches
// with full metadata passthrough.
package company

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leadex-cloud/leadex/internal/db"
	"github.com/leadex-cloud/leadex/internal/domain"
	"github.com/leadex-cloud/leadex/internal/domain/filter"
	"github.com/leadex-cloud/leadex/internal/metrics"
)

// Index naming.
const (
	collection   = "companies"
	tagSeparator = ","
)

// Internal hash fields never exposed as match metadata.
const (
	fieldVector  = "__vector"
	fieldContent = "__content"
)

// store is the consumer interface for index operations.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Document is one company record ready for indexing.
type Document struct {
	ID      string
	Vector  []float32
	Content string
	Fields  map[string]string
}

// IndexParams holds the HNSW settings for index creation.
type IndexParams struct {
	Dimensions  int
	M           int
	EFConstruct int
}

// Repo is the company index repository.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a company repository. keyPrefix namespaces all Redis keys.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, collection)
}

func (r *Repo) docPrefix() string {
	return fmt.Sprintf("%s%s:", r.keyPrefix, collection)
}

// EnsureIndex creates the company FT index if it does not exist yet.
// Filterable fields mirror the filter schema; everything else lives in the
// hash unindexed and still passes through search results.
func (r *Repo) EnsureIndex(ctx context.Context, p IndexParams) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.docPrefix()},
		Fields: []db.IndexField{
			{Name: fieldVector, Type: db.IndexFieldVector,
				VectorDim: p.Dimensions, VectorDistance: db.DistanceCosine,
				VectorM: p.M, VectorEFConstruct: p.EFConstruct},
			{Name: "batch", Type: db.IndexFieldTag},
			{Name: "status", Type: db.IndexFieldTag},
			{Name: "tags", Type: db.IndexFieldTag, TagSeparator: tagSeparator},
			{Name: "location", Type: db.IndexFieldTag},
			{Name: "country", Type: db.IndexFieldTag},
			{Name: "year_founded", Type: db.IndexFieldNumeric},
			{Name: "num_founders", Type: db.IndexFieldNumeric},
			{Name: "team_size", Type: db.IndexFieldNumeric},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert stores company documents as hashes in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		fields := make(map[string]string, len(doc.Fields)+2)
		for k, v := range doc.Fields {
			fields[k] = v
		}
		fields[fieldVector] = vectorToBytes(doc.Vector)
		fields[fieldContent] = doc.Content
		items[i] = db.HashSetItem{Key: r.docPrefix() + doc.ID, Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert companies: %w", err)
	}
	return nil
}

// Search runs one filtered KNN query and normalizes raw hits into matches.
// Zero hits is success: an empty slice, never an error.
func (r *Repo) Search(
	ctx context.Context, vector []float32, flt filter.Filter, topK int,
) ([]domain.Match, error) {
	start := time.Now()
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName(),
		Filters:   flt,
		Vector:    vector,
		K:         topK,
	})
	if err != nil {
		metrics.IndexQueriesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexQuery, err)
	}
	metrics.IndexQueriesTotal.WithLabelValues("success").Inc()
	metrics.IndexQueryDuration.Observe(time.Since(start).Seconds())

	matches := make([]domain.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.docPrefix())
		matches = append(matches, domain.Match{
			ID:     id,
			Score:  entry.Score,
			Fields: normalizeFields(entry.Fields),
		})
	}
	return matches, nil
}

// listFields are stored comma-joined and restored to string slices.
var listFields = map[string]struct{}{
	"tags":           {},
	"founders_names": {},
}

// normalizeFields converts flat hash values back into typed metadata:
// numerics parse to float64, known list fields split, JSON blobs decode,
// internal fields drop. Unknown keys pass through untouched.
func normalizeFields(raw map[string]string) map[string]any {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == fieldVector || k == fieldContent {
			continue
		}
		if _, ok := listFields[k]; ok {
			fields[k] = splitList(v)
			continue
		}
		// ParseFloat also accepts "NaN" and "Inf", which JSON cannot
		// serialize; those stay strings.
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			fields[k] = f
			continue
		}
		if decoded, ok := decodeJSONValue(v); ok {
			fields[k] = decoded
			continue
		}
		fields[k] = v
	}
	return fields
}

func splitList(v string) []string {
	if v == "" {
		return []string{}
	}
	parts := strings.Split(v, tagSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// vectorToBytes serializes a vector to the binary hash field format.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// decodeJSONValue recovers structures the ingester stored as JSON strings
// (e.g. founder_details).
func decodeJSONValue(v string) (any, bool) {
	trimmed := strings.TrimSpace(v)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}
