// Package ptr has helpers to take the address of literal values.
package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}
