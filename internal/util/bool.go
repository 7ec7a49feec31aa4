package util

// TrueIfNil dereferences the given bool pointer, defaulting to true. Used for
// optional payload flags whose omitted form means enabled.
func TrueIfNil(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
