package reflectmeta

import "fmt"

// DefineMetadata stores metadataValue under metadataKey for the (target, propertyKey)
// pair, replacing any previous value.
//
// The first successful definition on a target records its delegate: the target's
// prototype, or the target itself when it has none. Later definitions never change it.
func (s *Store) DefineMetadata(metadataKey Key, metadataValue any, target Target, propertyKey Key) error {
	if err := validateTriple(metadataKey, target, propertyKey); err != nil {
		return &MetadataError{Op: "define", Property: propertyKey, Key: metadataKey, Err: err}
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()

	def := Definition{Key: metadataKey, Value: metadataValue, Target: target, Property: propertyKey}
	if err := hooks.runBeforeDefine(&def); err != nil {
		return &MetadataError{
			Op:       "define",
			Property: propertyKey,
			Key:      metadataKey,
			Err:      fmt.Errorf("%w: %w", ErrHookRejected, err),
		}
	}
	// only the value may be rewritten by hooks
	def.Key, def.Target, def.Property = metadataKey, target, propertyKey

	delegate := s.resolvePrototype(target)
	if delegate == nil {
		delegate = target
	}

	s.mu.Lock()
	slot := s.materialize(target, propertyKey)
	slot.values[metadataKey] = def.Value
	if _, ok := s.delegates[target]; !ok {
		s.delegates[target] = delegate
	}
	s.mu.Unlock()

	s.log().Debug("Metadata defined", "key", keyString(metadataKey), "property", keyString(propertyKey), "target", fmt.Sprintf("%T", target))
	hooks.runAfterDefine(def)

	return nil
}

// GetMetadata returns the value stored under metadataKey for the (target, propertyKey)
// pair. When the target has no such value, the lookup makes one hop to the target's
// delegate and stops there. Absence is reported as (nil, false), never as an error.
func (s *Store) GetMetadata(metadataKey Key, target Target, propertyKey Key) (any, bool) {
	if validateTriple(metadataKey, target, propertyKey) != nil {
		return nil, false
	}

	proto := s.resolvePrototype(target)

	s.mu.RLock()
	hooks := s.hooks
	value, found := s.ownValue(target, propertyKey, metadataKey)
	delegated := false
	if !found {
		if delegate := s.delegateOf(target, proto); delegate != nil {
			value, found = s.ownValue(delegate, propertyKey, metadataKey)
			delegated = found
		}
	}
	s.mu.RUnlock()

	hooks.runLookup(Lookup{
		Key:       metadataKey,
		Target:    target,
		Property:  propertyKey,
		Found:     found,
		Delegated: delegated,
	})

	return value, found
}

// GetOwnMetadata returns the value stored on the target itself, without delegation
func (s *Store) GetOwnMetadata(metadataKey Key, target Target, propertyKey Key) (any, bool) {
	if validateTriple(metadataKey, target, propertyKey) != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ownValue(target, propertyKey, metadataKey)
}

// HasMetadata reports whether GetMetadata would find a value
func (s *Store) HasMetadata(metadataKey Key, target Target, propertyKey Key) bool {
	_, ok := s.GetMetadata(metadataKey, target, propertyKey)
	return ok
}

// Delegate returns the delegate recorded for target by its first definition
func (s *Store) Delegate(target Target) (Target, bool) {
	if validateTarget(target) != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	delegate, ok := s.delegates[target]
	return delegate, ok
}

// delegateOf must be called with at least the read lock held. A recorded delegate
// wins over the derived prototype; a self delegate means no hop.
func (s *Store) delegateOf(target, proto Target) Target {
	delegate, ok := s.delegates[target]
	if !ok {
		return proto
	}
	if delegate == target {
		return nil
	}
	return delegate
}

// Metadata returns a decorator that defines metadataKey as metadataValue on whatever
// (target, property) pair it is applied to. Building the decorator has no side effects.
func (s *Store) Metadata(metadataKey Key, metadataValue any) Decorator {
	return func(target Target, propertyKey Key) error {
		return s.DefineMetadata(metadataKey, metadataValue, target, propertyKey)
	}
}

// Decorate applies decorators to a (target, property) pair in order, stopping at the first error
func (s *Store) Decorate(target Target, propertyKey Key, decorators ...Decorator) error {
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator(target, propertyKey); err != nil {
			return err
		}
	}
	return nil
}
