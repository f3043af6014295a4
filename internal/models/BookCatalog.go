package models

// BookCatalog answers whether a book id is known. Consulted only for
// cross-reference warnings.
type BookCatalog interface {
	HasBook(id string) bool
}

type BookSet map[string]struct{}

func NewBookSet(ids ...string) BookSet {
	s := make(BookSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s BookSet) HasBook(id string) bool {
	_, ok := s[id]
	return ok
}
