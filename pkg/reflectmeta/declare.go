package reflectmeta

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag read by DeclareStruct.
const TagName = "meta"

// DeclareStruct defines the metadata carried by `meta` struct tags of a struct type.
//
// v is a reflect.Type, a struct value, or a pointer to a struct. Every tagged field
// becomes a property of the struct's reflect.Type target, keyed by the field name.
// The tag is a comma-separated list of `key=value` pairs; a bare `key` stores true.
// Keys are made of letters, digits, '_', '-' and '.'. A value containing commas
// must be wrapped in single quotes.
//
//	type Box struct {
//		Length float64 `meta:"unit=cm,required"`
//		Code   string  `meta:"pattern='^[A-Z]{1,3}$'"`
//	}
//
// All tags are parsed before anything is defined, so a malformed tag leaves the
// store untouched. Pairs are then defined field by field in tag order.
//
// Because pointers to a struct delegate to the struct type, values declared here are
// visible through every *Box instance.
func (s *Store) DeclareStruct(v any) error {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return &MetadataError{Op: "declare", Err: ErrInvalidTarget}
	}

	type declaration struct {
		property   string
		decorators []Decorator
	}

	var declarations []declaration
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		entries, err := parseTag(tag)
		if err != nil {
			return &MetadataError{Op: "declare", Property: field.Name, Err: err}
		}

		decorators := make([]Decorator, 0, len(entries))
		for _, entry := range entries {
			decorators = append(decorators, s.Metadata(entry.key, entry.value))
		}
		declarations = append(declarations, declaration{property: field.Name, decorators: decorators})
	}

	for _, d := range declarations {
		if err := s.Decorate(t, d.property, d.decorators...); err != nil {
			return err
		}
	}

	return nil
}

type tagEntry struct {
	key   string
	value any
}

func parseTag(tag string) ([]tagEntry, error) {
	parts, err := splitTag(tag)
	if err != nil {
		return nil, err
	}

	entries := make([]tagEntry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !validTagKey(key) {
			return nil, fmt.Errorf("%w: bad key in %q", ErrInvalidTag, part)
		}
		if !hasValue {
			entries = append(entries, tagEntry{key: key, value: true})
			continue
		}

		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "'") {
			if len(value) < 2 || !strings.HasSuffix(value, "'") || strings.Contains(value[1:len(value)-1], "'") {
				return nil, fmt.Errorf("%w: bad quoting in %q", ErrInvalidTag, part)
			}
			value = value[1 : len(value)-1]
		} else if strings.Contains(value, "'") {
			return nil, fmt.Errorf("%w: bad quoting in %q", ErrInvalidTag, part)
		}
		entries = append(entries, tagEntry{key: key, value: value})
	}
	return entries, nil
}

// splitTag splits on commas outside single quotes.
func splitTag(tag string) ([]string, error) {
	var parts []string
	start, quoted := 0, false
	for i := 0; i < len(tag); i++ {
		switch tag[i] {
		case '\'':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, tag[start:i])
				start = i + 1
			}
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidTag, tag)
	}
	return append(parts, tag[start:]), nil
}

func validTagKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
