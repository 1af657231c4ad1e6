package enums

import "fmt"

// CartStatus tracks a cart through its checkout lifecycle.
type CartStatus string

const (
	CartStatusOpen      CartStatus = "open"
	CartStatusSubmitted CartStatus = "submitted"
	CartStatusDelivered CartStatus = "delivered"
)

var validCartStatuses = []CartStatus{
	CartStatusOpen,
	CartStatusSubmitted,
	CartStatusDelivered,
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	for _, candidate := range validCartStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
