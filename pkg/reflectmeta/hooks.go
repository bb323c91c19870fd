package reflectmeta

// Hooks let callers observe or veto store operations without modifying the store.
// Hooks run outside the store lock, in registration order.
type Hooks struct {
	// BeforeDefine runs before a value is written. Returning an error aborts the
	// write. Hooks may replace Definition.Value.
	BeforeDefine []BeforeDefineHook

	// AfterDefine runs after a value has been written.
	AfterDefine []AfterDefineHook

	// OnLookup runs after every GetMetadata call with valid arguments.
	OnLookup []LookupHook
}

// Definition describes a single DefineMetadata call.
type Definition struct {
	Key      Key
	Value    any
	Target   Target
	Property Key
}

// Lookup describes the outcome of a single GetMetadata call.
type Lookup struct {
	Key      Key
	Target   Target
	Property Key
	Found    bool
	// Delegated is true when the value came from the target's delegate.
	Delegated bool
}

// BeforeDefineHook is called before a metadata value is stored
type BeforeDefineHook func(def *Definition) error

// AfterDefineHook is called after a metadata value is stored
type AfterDefineHook func(def Definition)

// LookupHook is called after a metadata lookup
type LookupHook func(lookup Lookup)

// merge appends the hooks of other after the receiver's own.
func (h Hooks) merge(other *Hooks) Hooks {
	if other == nil {
		return h
	}
	return Hooks{
		BeforeDefine: append(append([]BeforeDefineHook(nil), h.BeforeDefine...), other.BeforeDefine...),
		AfterDefine:  append(append([]AfterDefineHook(nil), h.AfterDefine...), other.AfterDefine...),
		OnLookup:     append(append([]LookupHook(nil), h.OnLookup...), other.OnLookup...),
	}
}

func (h Hooks) runBeforeDefine(def *Definition) error {
	for _, hook := range h.BeforeDefine {
		if err := hook(def); err != nil {
			return err
		}
	}
	return nil
}

func (h Hooks) runAfterDefine(def Definition) {
	for _, hook := range h.AfterDefine {
		hook(def)
	}
}

func (h Hooks) runLookup(lookup Lookup) {
	for _, hook := range h.OnLookup {
		hook(lookup)
	}
}
