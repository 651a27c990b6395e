package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 4, c.Len())

	smallest, largest := len(c.ItemAt(0).Text), len(c.ItemAt(0).Text)
	for i := 0; i < c.Len(); i++ {
		n := len(c.ItemAt(i).Text)
		smallest = min(smallest, n)
		largest = max(largest, n)
	}
	assert.GreaterOrEqual(t, largest, smallest*MinSpread)
	assert.Equal(t, "small", c.ItemAt(0).Name)
	assert.Equal(t, "very-large", c.ItemAt(3).Name)
}

func TestItemAtWraps(t *testing.T) {
	c := Default()
	for i := 0; i < 3*c.Len(); i++ {
		assert.Equal(t, c.ItemAt(i%c.Len()).Name, c.ItemAt(i).Name)
	}
	assert.Equal(t, c.ItemAt(c.Len()-1).Name, c.ItemAt(-1).Name)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New([]Item{{Name: "a", Text: []byte("x")}, {Name: "b"}})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = New([]Item{{Text: []byte("abc")}, {Text: []byte("abcdef")}})
	assert.ErrorIs(t, err, ErrNoSpread)
}

func TestNewCopiesItems(t *testing.T) {
	items := []Item{{Name: "a", Text: []byte("x")}, {Name: "b", Text: []byte("0123456789")}}
	c, err := New(items)
	require.NoError(t, err)
	items[0].Name = "changed"
	assert.Equal(t, "a", c.ItemAt(0).Name)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	content := `items:
  - name: tiny
    text: "ok"
    approx_tokens: 1
  - text: "a much longer line of text for the engine"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "tiny", c.ItemAt(0).Name)
	assert.Equal(t, "item-1", c.ItemAt(1).Name)
	assert.Equal(t, 2+len("a much longer line of text for the engine"), c.Bytes())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("items: [::"))
	assert.Error(t, err)

	_, err = Parse([]byte("items: []"))
	assert.ErrorIs(t, err, ErrEmpty)
}
