// Package reflectmeta provides a process-local metadata registry that attaches
// arbitrary key/value annotations to (target, property) pairs.
//
// A target is any identity-comparable value: a pointer, a channel, an
// unsafe.Pointer, or a reflect.Type. Two distinct pointers are distinct targets
// even when the values they point to are equal. Pointers to zero-size values,
// such as *struct{}, are rejected because Go may hand out one address for
// every zero-size allocation. Property keys and metadata keys
// are strings or *Symbol values.
//
// Annotations are written either imperatively with DefineMetadata, or
// declaratively with decorators built by Metadata (applied through Decorate) and
// with `meta:"..."` struct tags applied through DeclareStruct.
//
// Lookup Strategy
//
// GetMetadata reads the target's own slot first. On a miss it makes exactly one
// hop to the target's delegate and stops there. The delegate is recorded on the
// first DefineMetadata for a target and never reassigned afterward. A target that
// has never been written to delegates to its prototype: the target named by
// Prototyped.MetadataPrototype, or, for a pointer to a struct, the struct's
// reflect.Type. This lets metadata declared on a type be read through its
// instances.
//
// Reads never grow the store. Only DefineMetadata and GetOrCreatePropertyMap
// materialize slots.
package reflectmeta
