package reflectmeta

// defaultStore is the process-wide store behind the package-level functions.
// It lives for the lifetime of the process; Reset it between tests if needed.
var defaultStore = New()

// Default returns the process-wide store
func Default() *Store {
	return defaultStore
}

// DefineMetadata defines metadata on the process-wide store
func DefineMetadata(metadataKey Key, metadataValue any, target Target, propertyKey Key) error {
	return defaultStore.DefineMetadata(metadataKey, metadataValue, target, propertyKey)
}

// GetMetadata reads metadata from the process-wide store
func GetMetadata(metadataKey Key, target Target, propertyKey Key) (any, bool) {
	return defaultStore.GetMetadata(metadataKey, target, propertyKey)
}

// GetOwnMetadata reads metadata from the process-wide store without delegation
func GetOwnMetadata(metadataKey Key, target Target, propertyKey Key) (any, bool) {
	return defaultStore.GetOwnMetadata(metadataKey, target, propertyKey)
}

// HasMetadata reports whether the process-wide store has a value for the triple
func HasMetadata(metadataKey Key, target Target, propertyKey Key) bool {
	return defaultStore.HasMetadata(metadataKey, target, propertyKey)
}

// Metadata returns a decorator bound to the process-wide store
func Metadata(metadataKey Key, metadataValue any) Decorator {
	return defaultStore.Metadata(metadataKey, metadataValue)
}

// Decorate applies decorators to a (target, property) pair
func Decorate(target Target, propertyKey Key, decorators ...Decorator) error {
	return defaultStore.Decorate(target, propertyKey, decorators...)
}

// DeclareStruct applies `meta` struct tags to the process-wide store
func DeclareStruct(v any) error {
	return defaultStore.DeclareStruct(v)
}
