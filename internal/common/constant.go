package common

const (
	// DefaultCategory is assigned to notes created without a category.
	DefaultCategory = "General"

	// MinPasswordLength is the shortest password accepted by signup and login.
	MinPasswordLength = 6

	// MinNameLength is the shortest display name accepted by signup.
	MinNameLength = 2
)
