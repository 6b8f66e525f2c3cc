// Package resource implements the client side collection kept for one kind of
// entity of the inventory API: the listed items, the selected item, and the
// loading and error state of the last operations.
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// Requester is the subset of the API client used by the stores.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

type Entity[ID comparable] interface {
	Key() ID
}

// Policy decides how items follow a successful create or update.
type Policy int

const (
	// MergeResult merges the entity returned by the server into items.
	MergeResult Policy = iota
	// Refetch reloads the list with the filters of the last FetchAll.
	Refetch
)

// Labels name the entity in the messages of failed operations.
type Labels struct {
	Singular string
	Plural   string
}

type config struct {
	policy    Policy
	listQuery func(url.Values) url.Values
	onBegin   func()
}

type Option func(*config)

func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithListQuery adjusts the query of every list request.
func WithListQuery(fn func(url.Values) url.Values) Option {
	return func(c *config) {
		c.listQuery = fn
	}
}

// WithOnBegin registers fn to run whenever an operation of the store starts.
func WithOnBegin(fn func()) Option {
	return func(c *config) {
		c.onBegin = fn
	}
}

// Store is safe for concurrent use. Overlapping operations are not
// serialised; the last one to complete decides items and current.
type Store[ID comparable, T Entity[ID]] struct {
	api    Requester
	path   string
	labels Labels
	config config

	mu          sync.Mutex
	items       []T
	current     *T
	inflight    int
	err         string
	lastFilters url.Values
}

// New creates a store for the collection at path, e.g. "/proveedores/".
func New[ID comparable, T Entity[ID]](api Requester, path string, labels Labels, opts ...Option) *Store[ID, T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[ID, T]{
		api:    api,
		path:   path,
		labels: labels,
		config: cfg,
		items:  []T{},
	}
}

func (s *Store[ID, T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

func (s *Store[ID, T]) Current() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		var zero T
		return zero, false
	}

	return *s.current, true
}

func (s *Store[ID, T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inflight > 0
}

// Err returns the message of the last failed operation, or "".
func (s *Store[ID, T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *Store[ID, T]) Path() string {
	return s.path
}

func (s *Store[ID, T]) Labels() Labels {
	return s.labels
}

// FetchAll lists the collection with filters as query parameters and replaces items.
func (s *Store[ID, T]) FetchAll(ctx context.Context, filters url.Values) ([]T, error) {
	s.begin()
	defer s.end()

	items, err := s.list(ctx, filters)
	if err != nil {
		slogctx.Error(ctx, "Failed to load "+s.labels.Plural, "error", err)
		return nil, s.fail("error loading "+s.labels.Plural, err)
	}

	return items, nil
}

// list loads the collection and replaces items and the remembered filters.
func (s *Store[ID, T]) list(ctx context.Context, filters url.Values) ([]T, error) {
	query := cloneValues(filters)
	if s.config.listQuery != nil {
		query = s.config.listQuery(query)
	}

	var raw json.RawMessage
	if err := s.api.Get(ctx, s.path, query, &raw); err != nil {
		return nil, err
	}

	items, err := Normalize[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.labels.Plural, err)
	}

	s.mu.Lock()
	s.items = items
	s.lastFilters = cloneValues(filters)
	s.mu.Unlock()

	return slices.Clone(items), nil
}

// FetchOne loads a single entity into current.
func (s *Store[ID, T]) FetchOne(ctx context.Context, id ID) (T, error) {
	s.begin()
	defer s.end()

	var entity T
	if err := s.api.Get(ctx, s.itemPath(id), nil, &entity); err != nil {
		slogctx.Error(ctx, "Failed to load "+s.labels.Singular, "id", id, "error", err)
		return entity, s.fail(fmt.Sprintf("error loading %s %v", s.labels.Singular, id), err)
	}

	s.mu.Lock()
	s.current = &entity
	s.mu.Unlock()

	return entity, nil
}

// Create posts payload and makes the created entity current.
func (s *Store[ID, T]) Create(ctx context.Context, payload any) (T, error) {
	s.begin()
	defer s.end()

	var entity T
	if err := s.api.Post(ctx, s.path, payload, &entity); err != nil {
		slogctx.Error(ctx, "Failed to create "+s.labels.Singular, "error", err)
		return entity, s.fail(MutationMessage(err, "error creating "+s.labels.Singular), err)
	}

	s.mu.Lock()
	s.current = &entity
	s.mu.Unlock()

	s.sync(ctx, entity, true)

	return entity, nil
}

// Update puts payload and replaces the matching entry of items and current.
func (s *Store[ID, T]) Update(ctx context.Context, id ID, payload any) (T, error) {
	s.begin()
	defer s.end()

	var entity T
	if err := s.api.Put(ctx, s.itemPath(id), payload, &entity); err != nil {
		slogctx.Error(ctx, "Failed to update "+s.labels.Singular, "id", id, "error", err)
		return entity, s.fail(MutationMessage(err, fmt.Sprintf("error updating %s %v", s.labels.Singular, id)), err)
	}

	s.mu.Lock()
	if s.current != nil && (*s.current).Key() == id {
		s.current = &entity
	}
	s.mu.Unlock()

	s.sync(ctx, entity, false)

	return entity, nil
}

// Delete removes the entity from items and clears current when it matched.
func (s *Store[ID, T]) Delete(ctx context.Context, id ID) error {
	s.begin()
	defer s.end()

	if err := s.api.Delete(ctx, s.itemPath(id)); err != nil {
		slogctx.Error(ctx, "Failed to delete "+s.labels.Singular, "id", id, "error", err)
		return s.fail(MutationMessage(err, fmt.Sprintf("error deleting %s %v", s.labels.Singular, id)), err)
	}

	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(item T) bool {
		return item.Key() == id
	})
	if s.current != nil && (*s.current).Key() == id {
		s.current = nil
	}
	s.mu.Unlock()

	if s.config.policy == Refetch {
		if err := s.reload(ctx); err != nil {
			slogctx.Warn(ctx, "Reloading "+s.labels.Plural+" after delete failed", "error", err)
		}
	}

	return nil
}

// sync brings items in line with the server after a successful write. A
// created entity is appended when missing, an updated one only replaces its
// entry.
func (s *Store[ID, T]) sync(ctx context.Context, entity T, created bool) {
	if s.config.policy == Refetch {
		err := s.reload(ctx)
		if err == nil {
			return
		}

		slogctx.Warn(ctx, "Reloading "+s.labels.Plural+" failed, merging the result locally", "error", err)
	}

	s.merge(entity, created)
}

// reload repeats the last list request. It leaves the error state alone.
func (s *Store[ID, T]) reload(ctx context.Context) error {
	s.mu.Lock()
	filters := cloneValues(s.lastFilters)
	s.mu.Unlock()

	_, err := s.list(ctx, filters)

	return err
}

func (s *Store[ID, T]) merge(entity T, appendMissing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(item T) bool {
		return item.Key() == entity.Key()
	})
	switch {
	case idx >= 0:
		s.items[idx] = entity
	case appendMissing:
		s.items = append(s.items, entity)
	}
}

func (s *Store[ID, T]) itemPath(id ID) string {
	return fmt.Sprintf("%s%v/", s.path, id)
}

func (s *Store[ID, T]) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()

	if s.config.onBegin != nil {
		s.config.onBegin()
	}
}

func (s *Store[ID, T]) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
}

func (s *Store[ID, T]) fail(msg string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = msg

	return &Error{Message: msg, Err: err}
}

// Reject records err, raised before any request was sent, as the error state
// and returns it unchanged.
func (s *Store[ID, T]) Reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err.Error()

	return err
}

// ClearErr resets the error state.
func (s *Store[ID, T]) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = ""
}
