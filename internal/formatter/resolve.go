package formatter

// First returns the first non-zero value, or the zero value. It is the
// entity -> client -> global lookup chain spelled out at each call site.
func First[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
