package domain

// User is the domain model for submitters. The email address doubles as the
// identifier, matching what the portal collects on submission.
type User struct {
	ID    string
	Name  string
	Email string
	Phone string
}
