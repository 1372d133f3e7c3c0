package order

// ID is the opaque identity of an order. It is issued by the Repository or
// supplied by the caller and compared by value.
type ID string

// String returns the underlying token.
func (id ID) String() string {
	return string(id)
}

// Equal reports whether both identities hold the same token.
func (id ID) Equal(other ID) bool {
	return id == other
}
