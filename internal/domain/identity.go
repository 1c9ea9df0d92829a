package domain

// Identity is the caller decoded from a verified session credential.
type Identity struct {
	Email  string
	Claims map[string]any
}
