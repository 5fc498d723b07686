package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.All(), 20)
	assert.Equal(t, []string{
		"Design & Synthesis",
		"Execution & Implementation",
		"Analysis & Explanation",
		"State Management",
		"Error Handling",
		"Meta & Control",
	}, c.Categories())

	total := 0
	for _, cat := range c.Categories() {
		total += len(c.ByCategory(cat))
	}
	assert.Equal(t, 20, total)
}

func TestByID(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tpl, err := c.ByID("state-checkpoint")
	require.NoError(t, err)
	assert.Equal(t, "State Management", tpl.Category)
	assert.Equal(t, "[[SΣ|assumed:eventual-consistency,decided:microservices-architecture,locked:kubernetes|!checkpoint]]", tpl.Output)

	_, err = c.ByID("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSearch(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	hits := c.Search("CHECKPOINT")
	require.NotEmpty(t, hits)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	assert.Contains(t, ids, "state-checkpoint")
	assert.Contains(t, ids, "state-complex")

	assert.Len(t, c.Search(""), 20)
	assert.Empty(t, c.Search("no-such-phrase-anywhere"))

	// Outputs are searchable too.
	hits = c.Search("[[E2")
	require.Len(t, hits, 1)
	assert.Equal(t, "error-contradiction", hits[0].ID)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("categories: [A]\ntemplates:\n  - id: x\n    category: B\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("categories: [A]\ntemplates:\n  - id: x\n    category: A\n  - id: x\n    category: A\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("categories: [A]\ntemplates:\n  - name: nameless\n    category: A\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestTemplateMarkdown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	tpl, err := c.ByID("design-spec")
	require.NoError(t, err)

	md := tpl.Markdown()
	assert.Contains(t, md, "## Design Specification")
	assert.Contains(t, md, tpl.Output)
	assert.Contains(t, md, tpl.Input)
}
