package easyexpr

import (
	"strings"
	"sync"

	"github.com/yang-sanmu/EasyExpression/internal/ast"
)

// cacheEntry is published only once fully constructed: Block and Lines
// are set together before the entry is inserted into the map, so readers
// never observe a partially built entry.
type cacheEntry struct {
	block *ast.Block
	lines []string
}

// CompilationCache maps verbatim script text to its compiled Block and
// pre-split source lines (used for error snippets). It tolerates
// concurrent readers and writers; "last writer wins" on a concurrent
// insert of the same key is acceptable because values for the same key
// are structurally equivalent.
type CompilationCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	byBlock map[*ast.Block][]string
}

// NewCompilationCache creates an empty cache.
func NewCompilationCache() *CompilationCache {
	return &CompilationCache{
		entries: make(map[string]*cacheEntry),
		byBlock: make(map[*ast.Block][]string),
	}
}

// Get returns the cached Block for script, if present.
func (c *CompilationCache) Get(script string) (*ast.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[script]
	if !ok {
		return nil, false
	}
	return e.block, true
}

// Put inserts the compiled Block for script, splitting its source into
// lines for later snippet lookup.
func (c *CompilationCache) Put(script string, block *ast.Block) {
	lines := splitLines(script)
	entry := &cacheEntry{block: block, lines: lines}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[script] = entry
	c.byBlock[block] = lines
}

// LinesForBlock returns the source lines associated with block, if it was
// produced by a Compile call through this cache. Used to look up an error
// snippet when a host calls ExecuteBlock directly (no script text in
// hand).
func (c *CompilationCache) LinesForBlock(block *ast.Block) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lines, ok := c.byBlock[block]
	return lines, ok
}

// Snippet returns the 1-based line text for script at line. If script was
// never compiled through this cache (e.g. a compile failure path), it
// splits script on every call; that split is not stored in the cache.
func (c *CompilationCache) Snippet(script string, line int) string {
	c.mu.RLock()
	e, ok := c.entries[script]
	c.mu.RUnlock()

	var lines []string
	if ok {
		lines = e.lines
	} else {
		lines = splitLines(script)
	}
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Clear empties the cache.
func (c *CompilationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.byBlock = make(map[*ast.Block][]string)
}

// Count reports the number of cached scripts, for diagnostics and tests.
func (c *CompilationCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
