package models

// UserProfile is the identity-provider view of a user. Referenced by the
// collaboration core, never mutated by it.
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
