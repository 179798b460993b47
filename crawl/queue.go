package crawl

// Frontier is a FIFO of URLs that ignores anything it has already seen.
type Frontier struct {
	items []string
	seen  map[string]struct{}
	next  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push enqueues url unless it was pushed before.
func (f *Frontier) Push(url string) {
	if _, ok := f.seen[url]; ok {
		return
	}
	f.seen[url] = struct{}{}
	f.items = append(f.items, url)
}

// HasNext reports whether any pushed URL has not been popped yet.
func (f *Frontier) HasNext() bool {
	return f.next < len(f.items)
}

// Pop returns the oldest unpopped URL.
func (f *Frontier) Pop() string {
	url := f.items[f.next]
	f.next++
	return url
}

// Popped returns how many URLs have been handed out.
func (f *Frontier) Popped() int {
	return f.next
}

// All returns every pushed URL in push order.
func (f *Frontier) All() []string {
	return f.items
}
