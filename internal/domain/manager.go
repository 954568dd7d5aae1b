package domain

// Manager is a member of the fixed assignment roster. The roster is seeded at
// migration time and read-only from the service's perspective.
type Manager struct {
	ID         int
	Name       string
	Role       string
	Department string
	Active     bool
}
