package models

// Receipt is an image blob attached to an expense. At most one receipt
// exists per expense; re-uploading replaces it.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// ExpenseID is the expense this receipt documents.
	ExpenseID string

	// Image is the raw image bytes.
	Image []byte

	// CreatedAt is the Unix timestamp when the receipt was uploaded.
	CreatedAt int64
}
