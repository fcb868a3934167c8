package types

import "strings"

// Address is the shipping address embedded on a user, stored as jsonb.
type Address struct {
	Street   string `json:"street" validate:"required,min=10,max=100"`
	City     string `json:"city" validate:"required,min=2,max=20"`
	State    string `json:"state" validate:"required,min=2,max=30"`
	Landmark string `json:"landmark" validate:"required,min=5,max=80"`
	PinCode  string `json:"pin_code" validate:"required,len=6"`
}

// IsZero reports whether no address has been captured.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.Landmark) == "" &&
		strings.TrimSpace(a.PinCode) == ""
}

// OneLine renders the address for notification bodies.
func (a Address) OneLine() string {
	parts := []string{a.Street, a.City, a.State, a.Landmark, a.PinCode}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
