package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const rowPrefix = "row-"

// FormatRowID returns a row ID like "row-3" for the parsed row at index.
func FormatRowID(index int) string {
	return rowPrefix + strconv.Itoa(index)
}

// ParseRowID parses "row-3" into its numeric suffix.
func ParseRowID(rowID string) (int64, error) {
	if !strings.HasPrefix(rowID, rowPrefix) {
		return 0, fmt.Errorf("invalid row ID format: %q", rowID)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(rowID, rowPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in row ID %q: %w", rowID, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative number in row ID %q", rowID)
	}
	return n, nil
}

// Generator issues timestamp-based row IDs for rows added by hand.
// It never hands out the same ID twice, nor one already reserved.
type Generator struct {
	mu     sync.Mutex
	now    func() time.Time
	issued map[string]bool
}

// NewGenerator creates a Generator. A nil clock means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now, issued: make(map[string]bool)}
}

// Reserve marks IDs as taken so Next skips them.
func (g *Generator) Reserve(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, v := range ids {
		g.issued[v] = true
	}
}

// Next returns "row-<unix millis>", bumping past any ID already taken.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	for {
		v := rowPrefix + strconv.FormatInt(n, 10)
		if !g.issued[v] {
			g.issued[v] = true
			return v
		}
		n++
	}
}
