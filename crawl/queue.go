// URL dedup set.

package crawl

// Seen is a set of URLs keyed by exact string.
// It is not safe for concurrent use.
type Seen struct {
	visited map[string]bool
}

// NewSeen creates an empty Seen set.
func NewSeen() *Seen {
	return &Seen{
		visited: make(map[string]bool),
	}
}

// Add records url and reports whether it was new.
func (s *Seen) Add(url string) bool {
	if s.visited[url] {
		return false
	}
	s.visited[url] = true
	return true
}

// Len returns the number of unique URLs seen.
func (s *Seen) Len() int {
	return len(s.visited)
}
