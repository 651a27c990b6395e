// Package corpus holds the fixed, ordered set of texts fed to the engine.
package corpus

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MinSpread is how many times larger than the smallest text the largest
// one must be, so the engine's pool crosses several growth points.
const MinSpread = 10

// Item is one workload text. ApproxTokens is informational only.
type Item struct {
	Name         string
	Text         []byte
	ApproxTokens int
}

// Corpus is a non-empty list of items, read cyclically.
type Corpus struct {
	items []Item
}

var (
	ErrEmpty     = errors.New("corpus has no items")
	ErrEmptyText = errors.New("corpus item has empty text")
	ErrNoSpread  = errors.New("corpus sizes are too uniform")
)

// New validates items and returns a corpus over a copy of them.
func New(items []Item) (*Corpus, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	smallest, largest := -1, 0
	for i, it := range items {
		n := len(it.Text)
		if n == 0 {
			return nil, fmt.Errorf("%w: item %d (%s)", ErrEmptyText, i, it.Name)
		}
		if smallest < 0 || n < smallest {
			smallest = n
		}
		largest = max(largest, n)
	}
	if largest < smallest*MinSpread {
		return nil, fmt.Errorf("%w: largest item is %d bytes, smallest %d, want at least %dx", ErrNoSpread, largest, smallest, MinSpread)
	}
	return &Corpus{items: append([]Item(nil), items...)}, nil
}

// ItemAt returns the item at index modulo the corpus size.
func (c *Corpus) ItemAt(index int) Item {
	n := len(c.items)
	i := index % n
	if i < 0 {
		i += n
	}
	return c.items[i]
}

func (c *Corpus) Len() int {
	return len(c.items)
}

// Bytes is the total size of one pass over the corpus.
func (c *Corpus) Bytes() int {
	total := 0
	for _, it := range c.items {
		total += len(it.Text)
	}
	return total
}

type fileItem struct {
	Name         string `yaml:"name"`
	Text         string `yaml:"text"`
	ApproxTokens int    `yaml:"approx_tokens"`
}

type file struct {
	Items []fileItem `yaml:"items"`
}

// Load reads a YAML corpus file:
//
//	items:
//	  - name: small
//	    text: "..."
//	    approx_tokens: 10
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Corpus, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	items := make([]Item, 0, len(f.Items))
	for i, fi := range f.Items {
		name := fi.Name
		if name == "" {
			name = fmt.Sprintf("item-%d", i)
		}
		items = append(items, Item{Name: name, Text: []byte(fi.Text), ApproxTokens: fi.ApproxTokens})
	}
	return New(items)
}
