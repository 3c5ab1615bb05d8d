package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func TestAdjustLines_DropsRemovedOriginLine(t *testing.T) {
	doc := parseDoc(t, `{"version":3,"sources":["../a.js"],"mappings":"AACA"}`)

	// Origin line 1 was removed by the edit.
	doc.AdjustLines(0, []int{0, -1, 1})

	assert.Equal(t, "", doc.Mappings())
}

func TestAdjustLines_RewritesOriginLine(t *testing.T) {
	doc := parseDoc(t, `{"version":3,"sources":["a.js"],"mappings":"AAAA;AACA"}`)

	// Line 0 removed, line 1 became line 0.
	doc.AdjustLines(0, []int{-1, 0})

	assert.Equal(t, ";AAAA", doc.Mappings(), "line count preserved, surviving segment re-based")
}

func TestAdjustLines_OtherSourcesUntouched(t *testing.T) {
	// Two segments on one line: source 0 at origin line 1 (dropped)
	// and source 1 at origin line 0 (kept as-is).
	doc := parseDoc(t, `{"version":3,"sources":["a.js","b.js"],"mappings":"AACA,ICDA"}`)

	doc.AdjustLines(0, []int{0, -1})

	lines, err := decodeMappings(doc.Mappings())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Len(t, lines[0], 1)
	assert.Equal(t, []int{4, 1, 0, 0}, lines[0][0], "source 1 segment decodes to the same absolute values")
}

func TestAdjustLines_OutOfRangeOriginDropped(t *testing.T) {
	doc := parseDoc(t, `{"version":3,"sources":["a.js"],"mappings":"AAyEA"}`)

	// Origin line 73 is far outside the two-line map.
	doc.AdjustLines(0, []int{0, 1})

	assert.Equal(t, "", doc.Mappings())
}

func TestAdjustLines_VersionGate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong version", `{"version":2,"sources":["a.js"],"mappings":"AACA"}`},
		{"missing version", `{"sources":["a.js"],"mappings":"AACA"}`},
		{"mappings not a string", `{"version":3,"mappings":[1,2]}`},
		{"missing mappings", `{"version":3,"sources":["a.js"]}`},
		{"undecodable mappings", `{"version":3,"sources":["a.js"],"mappings":"!!"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.doc)
			before, err := doc.MarshalIndent()
			require.NoError(t, err)

			doc.AdjustLines(0, []int{-1, -1})

			after, err := doc.MarshalIndent()
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after), "document must pass through untouched")
		})
	}
}

func TestAdjustLines_NameIndexPreserved(t *testing.T) {
	// A 5-field segment keeps its name reference through adjustment.
	lines := [][][]int{{{0, 0, 1, 0, 2}}}
	encoded := encodeMappings(lines)

	doc := parseDoc(t, `{"version":3,"names":["a","b","c"],"sources":["a.js"],"mappings":"`+encoded+`"}`)
	doc.AdjustLines(0, []int{5, 7})

	got, err := decodeMappings(doc.Mappings())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 7, 0, 2}, got[0][0])
}

func TestMarshalIndent_TrailingNewline(t *testing.T) {
	doc := parseDoc(t, `{"version":3,"mappings":""}`)
	out, err := doc.MarshalIndent()
	require.NoError(t, err)
	assert.True(t, len(out) > 0 && out[len(out)-1] == '\n')
}
