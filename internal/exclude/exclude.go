// Package exclude implements the ordered set of titles hidden from a ranking.
package exclude

import "github.com/mithrel/topviews/internal/util"

// Set is an insertion-ordered, deduplicated collection of page titles.
// Titles are stored in display form, so "Main_Page" and "Main Page" collide.
// The zero value is ready to use.
type Set struct {
	order []string
	index map[string]int
}

// New returns a set seeded with titles
func New(titles ...string) *Set {
	s := &Set{}
	s.Add(titles...)
	return s
}

// Add inserts titles not already present and returns how many were new
func (s *Set) Add(titles ...string) int {
	if s.index == nil {
		s.index = make(map[string]int, len(titles))
	}
	added := 0
	for _, t := range titles {
		t = util.Descore(t)
		if t == "" {
			continue
		}
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = len(s.order)
		s.order = append(s.order, t)
		added++
	}
	return added
}

// Remove drops title and reports whether it was present
func (s *Set) Remove(title string) bool {
	if s == nil || s.index == nil {
		return false
	}
	title = util.Descore(title)
	i, ok := s.index[title]
	if !ok {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, title)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

// Contains reports whether title is in the set
func (s *Set) Contains(title string) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[util.Descore(title)]
	return ok
}

// List returns a copy of the titles in insertion order, nil when empty
func (s *Set) List() []string {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of titles
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Clear empties the set
func (s *Set) Clear() {
	s.order = nil
	s.index = nil
}

// Replace clears the set and adds titles
func (s *Set) Replace(titles ...string) {
	s.Clear()
	s.Add(titles...)
}
