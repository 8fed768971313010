package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "sheet.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeSpec(t, t.TempDir(), `{"cards": []}`)

	spec, warnings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "US", spec.Paper)
	assert.Equal(t, 300, spec.PPI)
	assert.Equal(t, "#ffffff", spec.CardBackground)
	assert.Equal(t, "#808080", spec.LineColor)
	assert.False(t, spec.RoundedCorners)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no cards")
}

func TestLoadResolvesCardPathsAgainstSpecDir(t *testing.T) {
	dir := t.TempDir()
	cardPath := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(cardPath, []byte("placeholder"), 0644))

	path := writeSpec(t, dir, `{"cards": ["hero.png", "missing.png"]}`)

	spec, warnings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cardPath, spec.Cards[0])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing.png")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeSpec(t, t.TempDir(), `{"cards": [`)
	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestPageCount(t *testing.T) {
	var testCases = []struct {
		cards int
		pages int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 2},
		{18, 2},
		{19, 3},
	}

	for _, tt := range testCases {
		spec := &Spec{Cards: make([]string, tt.cards)}
		assert.Equal(t, tt.pages, spec.PageCount(), "%d cards", tt.cards)
	}
}

func TestPageCards(t *testing.T) {
	spec := &Spec{Cards: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}

	assert.Len(t, spec.PageCards(0), 9)
	assert.Equal(t, []string{"j", "k"}, spec.PageCards(1))
	assert.Nil(t, spec.PageCards(2))
}

func TestExampleJSONRoundTrips(t *testing.T) {
	path := writeSpec(t, t.TempDir(), ExampleJSON())
	spec, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, len(spec.Cards))
	assert.True(t, spec.RoundedCorners)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#336699")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x33), c.R)
	assert.Equal(t, uint8(0x66), c.G)
	assert.Equal(t, uint8(0x99), c.B)
	assert.Equal(t, uint8(255), c.A)

	c, err = ParseHexColor("ffffff") // leading # optional
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)

	for _, s := range []string{"", "#fff", "#zzzzzz", "#1234567"} {
		_, err := ParseHexColor(s)
		assert.Error(t, err, "input %q", s)
	}
}
