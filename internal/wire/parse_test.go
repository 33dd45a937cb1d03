package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/szamlazz-go/internal/model"
	"github.com/billfold/szamlazz-go/internal/wire"
)

const sampleResponse = `<?xml version="1.0" encoding="UTF-8"?>
<szamla>
  <alap>
    <szamlaszam>E-TST-2024-1</szamlaszam>
    <penznem>HUF</penznem>
  </alap>
  <tetelek>
    <tetel><nev>First</nev></tetel>
    <tetel><nev>Second</nev></tetel>
  </tetelek>
</szamla>`

func TestParseBuildsTree(t *testing.T) {
	root, err := wire.Parse([]byte(sampleResponse))
	require.NoError(t, err)

	assert.Equal(t, "szamla", root.Name)
	require.True(t, root.Has("alap"))
	assert.Equal(t, "E-TST-2024-1", root.Child("alap").Value("szamlaszam"))
	assert.Equal(t, "HUF", root.Child("alap").Value("penznem"))
	assert.Equal(t, "", root.Child("alap").Value("missing"))
}

func TestParseRejectsMalformedXML(t *testing.T) {
	_, err := wire.Parse([]byte("<unclosed>"))
	require.Error(t, err)

	var pe *model.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := wire.Parse([]byte(""))
	require.Error(t, err)
}

func TestRepeatedChildrenBecomeSequences(t *testing.T) {
	root, err := wire.Parse([]byte(sampleResponse))
	require.NoError(t, err)

	tetelek := root.Child("tetelek")
	require.NotNil(t, tetelek)

	items := tetelek.Seq("tetel")
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Value("nev"))
	assert.Equal(t, "Second", items[1].Value("nev"))

	// Child returns the first of a repeated group.
	assert.Equal(t, "First", tetelek.Child("tetel").Value("nev"))
}

func TestSeqOnSingleChild(t *testing.T) {
	root, err := wire.Parse([]byte(`<r><tetelek><tetel><nev>Only</nev></tetel></tetelek></r>`))
	require.NoError(t, err)

	items := root.Child("tetelek").Seq("tetel")
	require.Len(t, items, 1)
	assert.Equal(t, "Only", items[0].Value("nev"))
}

func TestNormalizeSeqIsIdempotent(t *testing.T) {
	root, err := wire.Parse([]byte(sampleResponse))
	require.NoError(t, err)

	raw := root.Child("tetelek").Get("tetel")
	once := wire.NormalizeSeq(raw)
	twice := wire.NormalizeSeq(any(once))
	assert.Equal(t, once, twice)

	assert.Nil(t, wire.NormalizeSeq(nil))
	assert.Nil(t, wire.NormalizeSeq((*wire.Node)(nil)))
}

func TestNilNodeNavigationIsSafe(t *testing.T) {
	var n *wire.Node
	assert.Nil(t, n.Get("x"))
	assert.Nil(t, n.Child("x"))
	assert.False(t, n.Has("x"))
	assert.Equal(t, "", n.Value("x"))
	assert.Empty(t, n.Seq("x"))
}
