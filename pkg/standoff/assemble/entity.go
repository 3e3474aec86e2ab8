package assemble

import (
	"fmt"
	"strings"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

// Entity is one standoff text-bound annotation.
type Entity struct {
	ID    int
	Type  string
	Start int
	End   int
	Text  string
}

// String renders the entity as a standoff line without the newline.
func (e Entity) String() string {
	return fmt.Sprintf("T%d\t%s %d %d\t%s", e.ID, e.Type, e.Start, e.End, e.Text)
}

// Check verifies that the entity text holds no newline and carries no
// surrounding whitespace.
func (e Entity) Check() error {
	if strings.Contains(e.Text, "\n") {
		return internalerr.NewAlignmentError(internalerr.KindEntityText, 0,
			"newline in entity: %q", e.Text)
	}
	if e.Text != strings.TrimSpace(e.Text) {
		return internalerr.NewAlignmentError(internalerr.KindEntityText, 0,
			"entity contains extra whitespace: %q", e.Text)
	}
	return nil
}

// Counter hands out entity identifiers. It is not safe for concurrent use;
// parallel conversions need one counter each or external locking.
type Counter struct {
	start int
	next  int
}

// NewCounter returns a counter whose first identifier is start (1 when
// start is below 1).
func NewCounter(start int) *Counter {
	if start < 1 {
		start = 1
	}
	return &Counter{start: start, next: start}
}

// Next returns the next identifier and advances the counter.
func (c *Counter) Next() int {
	id := c.next
	c.next++
	return id
}

// Peek returns the identifier Next would return.
func (c *Counter) Peek() int { return c.next }

// Reset restarts numbering at the counter's start value.
func (c *Counter) Reset() { c.next = c.start }
