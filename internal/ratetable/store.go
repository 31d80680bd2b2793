package ratetable

import "sync/atomic"

// Provider hands out the rate table current at call time.
type Provider interface {
	Current() Table
}

// Store is a Provider whose table can be replaced while requests are in flight.
type Store struct {
	current atomic.Pointer[Table]
}

func NewStore(initial Table) *Store {
	s := &Store{}
	s.Swap(initial)
	return s
}

func (s *Store) Current() Table {
	return *s.current.Load()
}

// Swap installs next and returns the table it replaced.
func (s *Store) Swap(next Table) Table {
	prev := s.current.Swap(&next)
	if prev == nil {
		return Table{}
	}
	return *prev
}

// Static wraps a fixed table as a Provider.
type Static Table

func (s Static) Current() Table { return Table(s) }
