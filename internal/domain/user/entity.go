package user

// User represents a user resource returned by the remote user API.
// The zero value is used as the fallback when a request fails.
type User struct {
	ID    int64  `json:"id"`    // ID is the unique identifier for the user
	Name  string `json:"name"`  // Name is the full name of the user
	Email string `json:"email"` // Email is the email address of the user
}

// IsZero reports whether u is the empty fallback user.
func (u User) IsZero() bool {
	return u == User{}
}
