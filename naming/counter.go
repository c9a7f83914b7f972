// ABOUTME: Per-construction-context ordinal counter used for fallback product names.
// ABOUTME: Owned by builders instead of living in package-level state.
package naming

// Counter hands out increasing ordinals per product kind ("Tool" -> 1, 2, ...).
// A Counter belongs to one construction context, so separate builders and
// tests never observe each other's counts. Not safe for concurrent use.
type Counter struct {
	counts map[string]int
}

// NewCounter returns a counter starting at zero for every kind.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Next increments and returns the ordinal for kind.
func (c *Counter) Next(kind string) int {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[kind]++
	return c.counts[kind]
}
