package reflectmeta

import (
	"fmt"
	"reflect"
)

// Target is an identity-comparable value that metadata is attached to.
// Accepted kinds are non-nil pointers, channels, unsafe.Pointer values and reflect.Type.
// Pointers to zero-size values are rejected: the runtime may give distinct
// zero-size allocations the same address.
type Target = any

// Key names a property or a metadata slot. It must be a string or a non-nil *Symbol.
type Key = any

// Symbol is a unique key. Two symbols are never equal, whatever their descriptions.
type Symbol struct {
	description string
}

// NewSymbol creates a new unique symbol
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description}
}

// Description returns the description the symbol was created with
func (s *Symbol) Description() string {
	return s.description
}

func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.description)
}

// Prototyped is implemented by targets that name the target their lookups fall back to.
type Prototyped interface {
	MetadataPrototype() Target
}

// PrototypeResolver returns the prototype of a target, or nil when it has none.
type PrototypeResolver func(target Target) Target

// Decorator applies an annotation to a (target, property) pair.
type Decorator func(target Target, propertyKey Key) error

// DefaultPrototype resolves the prototype of a target.
//
// Targets implementing Prototyped name their own prototype. A pointer to a struct
// resolves to the struct's reflect.Type. Everything else, including reflect.Type
// targets themselves, has no prototype.
func DefaultPrototype(target Target) Target {
	switch t := target.(type) {
	case nil:
		return nil
	case reflect.Type:
		return nil
	case Prototyped:
		return t.MetadataPrototype()
	}

	rt := reflect.TypeOf(target)
	if rt.Kind() == reflect.Pointer && rt.Elem().Kind() == reflect.Struct {
		return rt.Elem()
	}
	return nil
}

func validateTarget(target Target) error {
	if target == nil {
		return ErrInvalidTarget
	}
	if _, ok := target.(reflect.Type); ok {
		return nil
	}

	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return ErrInvalidTarget
		}
		return nil
	case reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return ErrInvalidTarget
		}
		return nil
	default:
		return ErrInvalidTarget
	}
}

func validateKey(key Key) error {
	switch k := key.(type) {
	case string:
		return nil
	case *Symbol:
		if k != nil {
			return nil
		}
	}
	return ErrInvalidKey
}

func validateTriple(metadataKey Key, target Target, propertyKey Key) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if err := validateKey(propertyKey); err != nil {
		return err
	}
	return validateKey(metadataKey)
}

func keyString(key Key) string {
	return fmt.Sprint(key)
}
