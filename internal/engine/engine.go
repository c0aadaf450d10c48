package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/specledger/specledger/internal/graph"
	"github.com/specledger/specledger/internal/model"
	"github.com/specledger/specledger/internal/store"
)

// Engine is the orchestration layer over a single store.
type Engine struct {
	store  *store.Store
	scorer Scorer
	graph  *graph.Validator
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithScorer overrides the quality scorer.
func WithScorer(s Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithClock overrides the time source. Tests use this for
// deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides UUID generation. Tests use this for
// deterministic IDs.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an Engine over the given store.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		scorer: NewLengthScorer(),
		log:    zerolog.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.graph = graph.NewValidator(e, e.log)
	return e
}

// DocumentProject implements graph.Source.
func (e *Engine) DocumentProject(ctx context.Context, id string) (string, bool, error) {
	d, err := e.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d.ProjectID, true, nil
}

// DirectDependencies implements graph.Source.
func (e *Engine) DirectDependencies(ctx context.Context, id string) ([]string, error) {
	return e.store.DirectDependencies(ctx, id)
}

// DocumentTags implements graph.Source by reading the resolved
// version's tags.
func (e *Engine) DocumentTags(ctx context.Context, id string) ([]string, error) {
	d, err := e.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := e.resolveVersion(ctx, d, nil)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v.Tags, nil
}

// Graph exposes the dependency validator for read APIs.
func (e *Engine) Graph() *graph.Validator {
	return e.graph
}

// ValidateDependencies checks a proposed dependency set for a
// document.
func (e *Engine) ValidateDependencies(ctx context.Context, documentID string, proposed []string, projectID string) ([]graph.Warning, error) {
	return e.graph.Validate(ctx, documentID, proposed, projectID)
}

// TransitiveDependencies returns the full dependency closure of a
// document.
func (e *Engine) TransitiveDependencies(ctx context.Context, documentID string) (map[string]struct{}, error) {
	return e.graph.TransitiveDependencies(ctx, documentID)
}

func (e *Engine) historyEntry(docID, workItemID, changeType, field, oldValue, newValue, reason string) model.HistoryEntry {
	return model.HistoryEntry{
		DocumentID:   docID,
		WorkItemID:   workItemID,
		ChangeType:   changeType,
		FieldName:    field,
		OldValue:     oldValue,
		NewValue:     newValue,
		ChangeReason: reason,
		CreatedAt:    e.now(),
	}
}
