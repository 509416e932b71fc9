// Package storage persists mined rule sets as snapshots.
// Supports a SQLite file backend and an in-memory backend for tests.
package storage

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"basket-rules/core/engine"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save stores a snapshot, assigning ID and CreatedAt when empty
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot with its rules
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Latest returns the most recently created snapshot
	Latest(ctx context.Context) (*Snapshot, error)

	// List returns snapshot headers, newest first, without rules
	List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error)

	// Delete removes a snapshot and its rules
	Delete(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

// Snapshot is a persisted rule set with the parameters that produced it
type Snapshot struct {
	// ID is unique identifier
	ID string `json:"id"`

	// RunID is the engine run that produced the rules
	RunID string `json:"run_id,omitempty"`

	// Source is the input name
	Source string `json:"source,omitempty"`

	// InputHash fingerprints the input CSV
	InputHash string `json:"input_hash,omitempty"`

	// Mining parameters
	MinSupport   float64      `json:"min_support"`
	MaxLen       int          `json:"max_len"`
	Metric       types.Metric `json:"metric"`
	MinThreshold float64      `json:"min_threshold"`

	// Matrix dimensions
	Baskets  int `json:"baskets"`
	Services int `json:"services"`
	Itemsets int `json:"itemsets"`

	// RuleCount is len(Rules) at save time
	RuleCount int `json:"rule_count"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`

	// Rules are omitted by List
	Rules []types.Rule `json:"rules,omitempty"`
}

// FromResult builds an unsaved snapshot from an engine run.
func FromResult(result *engine.Result) *Snapshot {
	rules := make([]types.Rule, len(result.Rules))
	copy(rules, result.Rules)
	m := result.Metadata
	return &Snapshot{
		RunID:        m.RunID,
		Source:       m.Source,
		InputHash:    m.InputHash,
		MinSupport:   m.MinSupport,
		MaxLen:       m.MaxLen,
		Metric:       m.Metric,
		MinThreshold: m.MinThreshold,
		Baskets:      result.Stats.Baskets,
		Services:     result.Stats.Services,
		Itemsets:     len(result.Itemsets),
		RuleCount:    len(rules),
		Rules:        rules,
	}
}

// ListFilter filters snapshot listing
type ListFilter struct {
	InputHash string
	Since     time.Time
	Limit     int
	Offset    int
}

func (f *ListFilter) match(s *Snapshot) bool {
	if f == nil {
		return true
	}
	if f.InputHash != "" && s.InputHash != f.InputHash {
		return false
	}
	if !f.Since.IsZero() && s.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

func (f *ListFilter) page(snaps []*Snapshot) []*Snapshot {
	if f == nil {
		return snaps
	}
	if f.Offset > 0 {
		if f.Offset >= len(snaps) {
			return nil
		}
		snaps = snaps[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(snaps) {
		snaps = snaps[:f.Limit]
	}
	return snaps
}

func prepare(snap *Snapshot) error {
	if snap == nil {
		return errors.Input("nil snapshot")
	}
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	snap.RuleCount = len(snap.Rules)
	return nil
}

// MemoryStore is an in-memory storage backend (for testing)
type MemoryStore struct {
	snapshots map[string]*Snapshot
	mu        sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*Snapshot),
	}
}

func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := prepare(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snap
	stored.Rules = append([]types.Rule(nil), snap.Rules...)
	s.snapshots[snap.ID] = &stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, errors.NotFound("snapshot", id)
	}
	out := *snap
	out.Rules = append([]types.Rule(nil), snap.Rules...)
	return &out, nil
}

func (s *MemoryStore) Latest(ctx context.Context) (*Snapshot, error) {
	snaps, err := s.List(ctx, &ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.NotFound("snapshot", "latest")
	}
	return s.Get(ctx, snaps[0].ID)
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Snapshot
	for _, snap := range s.snapshots {
		if !filter.match(snap) {
			continue
		}
		header := *snap
		header.Rules = nil
		out = append(out, &header)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return filter.page(out), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return errors.NotFound("snapshot", id)
	}
	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Open creates a store by backend type. path is ignored for memory.
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteStore(ctx, path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", backend)
	}
}

// Ensure interfaces are implemented
var (
	_ Store     = (*SQLiteStore)(nil)
	_ Store     = (*MemoryStore)(nil)
	_ io.Closer = (*SQLiteStore)(nil)
)
