package reflectmeta

import (
	"log/slog"
	"sync"
)

// slotKey addresses one (target, property) pair in the arena.
type slotKey struct {
	target   Target
	property Key
}

// Store holds metadata for (target, property, key) triples.
//
// All state lives in a single arena keyed by the (target, property) pair, plus a
// side table of delegate references. One RWMutex guards the whole store.
type Store struct {
	mu        sync.RWMutex
	slots     map[slotKey]*PropertyMap
	delegates map[Target]Target
	hooks     Hooks
	logger    *slog.Logger
	prototype PrototypeResolver
}

// Option represents a functional option for configuring the store
type Option func(*Store)

// WithLogger sets the logger used by the store. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHooks adds lifecycle hooks to the store
func WithHooks(hooks *Hooks) Option {
	return func(s *Store) {
		s.hooks = s.hooks.merge(hooks)
	}
}

// WithPrototypeResolver replaces DefaultPrototype. A nil resolver disables
// prototype delegation, leaving every target delegating to itself.
func WithPrototypeResolver(resolver PrototypeResolver) Option {
	return func(s *Store) {
		s.prototype = resolver
	}
}

// New creates a new empty store
func New(options ...Option) *Store {
	s := &Store{
		slots:     make(map[slotKey]*PropertyMap),
		delegates: make(map[Target]Target),
		prototype: DefaultPrototype,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Use attaches additional hooks to a live store
func (s *Store) Use(hooks *Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = s.hooks.merge(hooks)
}

// Stats reports the size of the store.
type Stats struct {
	Targets   int
	Slots     int
	Delegates int
}

// Stats returns the current number of targets, (target, property) slots and delegate references
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make(map[Target]struct{})
	for key := range s.slots {
		targets[key.target] = struct{}{}
	}

	return Stats{
		Targets:   len(targets),
		Slots:     len(s.slots),
		Delegates: len(s.delegates),
	}
}

// Reset drops every slot and delegate reference. Hooks and options are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = make(map[slotKey]*PropertyMap)
	s.delegates = make(map[Target]Target)
}

// GetOrCreatePropertyMap returns the metadata map of a (target, property) pair,
// creating it if needed. The same *PropertyMap is returned on every call for the
// same pair until Reset.
func (s *Store) GetOrCreatePropertyMap(target Target, propertyKey Key) (*PropertyMap, error) {
	if err := validateTarget(target); err != nil {
		return nil, &MetadataError{Op: "property_map", Property: propertyKey, Err: err}
	}
	if err := validateKey(propertyKey); err != nil {
		return nil, &MetadataError{Op: "property_map", Property: propertyKey, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.materialize(target, propertyKey), nil
}

// materialize must be called with the write lock held.
func (s *Store) materialize(target Target, propertyKey Key) *PropertyMap {
	key := slotKey{target: target, property: propertyKey}
	if slot, ok := s.slots[key]; ok {
		return slot
	}

	slot := &PropertyMap{store: s, values: make(map[Key]any)}
	s.slots[key] = slot
	return slot
}

// ownValue must be called with at least the read lock held. It never inserts.
func (s *Store) ownValue(target Target, propertyKey, metadataKey Key) (any, bool) {
	slot, ok := s.slots[slotKey{target: target, property: propertyKey}]
	if !ok {
		return nil, false
	}
	value, ok := slot.values[metadataKey]
	return value, ok
}

// resolvePrototype returns a valid prototype distinct from target, or nil.
// It calls the resolver, so it must not run under the store lock.
func (s *Store) resolvePrototype(target Target) Target {
	if s.prototype == nil {
		return nil
	}
	proto := s.prototype(target)
	if validateTarget(proto) != nil || proto == target {
		return nil
	}
	return proto
}

func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// PropertyMap holds the metadata values of one (target, property) pair.
// Its methods share the owning store's lock.
type PropertyMap struct {
	store  *Store
	values map[Key]any
}

// Get returns the value stored under key
func (m *PropertyMap) Get(key Key) (any, bool) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok
}

// Has reports whether a value is stored under key
func (m *PropertyMap) Has(key Key) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key, replacing any previous value. It bypasses hooks.
func (m *PropertyMap) Set(key Key, value any) error {
	if err := validateKey(key); err != nil {
		return &MetadataError{Op: "set", Key: key, Err: err}
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	m.values[key] = value
	return nil
}

// Len returns the number of keys stored in the map
func (m *PropertyMap) Len() int {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	return len(m.values)
}
