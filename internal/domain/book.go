package domain

type BookStatus string

const (
	BookStatusAvailable BookStatus = "AVAILABLE"
	BookStatusBorrowed  BookStatus = "BORROWED"
)

type Book struct {
	ISBN            string     `json:"isbn"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	PublicationYear int        `json:"publication_year"`
	Status          BookStatus `json:"status"`
	BranchID        string     `json:"branch_id,omitempty"`
}

// IsAvailable reports whether the book can be borrowed right now.
func (b *Book) IsAvailable() bool {
	return b.Status == BookStatusAvailable
}
