package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique). Used for login and
	// for resolving group member invitations.
	Email string

	// Phone is the user's phone number. Optional.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never exposed outside the auth layer.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user model ready for persistence. The store assigns
// ID and CreatedAt on insert.
func NewUser(name, email, phone, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
	}
}
