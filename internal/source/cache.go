// Package source reads source lines for report snippets.
package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pthm/cchecker/internal/results"
)

// DefaultSize is the number of files kept in memory
const DefaultSize = 256

// Cache keeps the lines of recently read source files. It is safe for concurrent use.
type Cache struct {
	files *lru.Cache[string, []string]
}

// NewCache creates a cache holding at most size files
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	files, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("create source cache: %w", err)
	}
	return &Cache{files: files}, nil
}

// Line returns the 1-based line of path
func (c *Cache) Line(path string, line int) (string, error) {
	lines, err := c.lines(path)
	if err != nil {
		return "", err
	}
	if line < 1 || line > len(lines) {
		return "", fmt.Errorf("%s has no line %d", path, line)
	}
	return lines[line-1], nil
}

func (c *Cache) lines(path string) ([]string, error) {
	if lines, ok := c.files.Get(path); ok {
		return lines, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	c.files.Add(path, lines)
	return lines, nil
}

// Len returns the number of cached files
func (c *Cache) Len() int {
	return c.files.Len()
}

// Enrich fills in missing snippets from the referenced source lines. Findings
// whose file cannot be read keep an empty snippet.
func (c *Cache) Enrich(findings []results.Finding) {
	for i := range findings {
		if findings[i].Snippet != "" {
			continue
		}
		if line, err := c.Line(findings[i].FilePath, findings[i].Line); err == nil {
			findings[i].Snippet = strings.TrimRight(line, " \t")
		}
	}
}
