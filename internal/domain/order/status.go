package order

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusCreated is the initial state of every order.
	StatusCreated Status = "CREATED"
	// StatusCompleted is terminal.
	StatusCompleted Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", &UnknownStatusError{Status: v}
	}
	return s, nil
}
