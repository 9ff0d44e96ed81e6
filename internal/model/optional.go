package model

// Optional is a value that is either present or absent. The zero value is
// absent.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

// OptionalString treats the empty string as absent.
func OptionalString(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

func (o Optional[T]) IsPresent() bool { return o.ok }

// OrElse returns the value when present and def otherwise.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
