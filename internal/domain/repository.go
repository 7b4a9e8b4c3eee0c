package domain

// MemberPage is one page of the organization member directory
type MemberPage struct {
	Logins      []string
	HasNextPage bool
	EndCursor   string
}

// Repository represents a personal repository flagged by a search
type Repository struct {
	FullName string // owner/repo
}

// URL returns the web location of the repository
func (r Repository) URL() string {
	return "https://github.com/" + r.FullName
}
