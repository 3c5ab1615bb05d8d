// Package strip removes comments from script source text and reports
// how the edit moved the surviving lines around.
package strip

import (
	"sort"
	"strings"

	"github.com/cleanpack/cleanpack/pkg/jslex"
)

// LineMap maps an original 0-based line number to its line number in
// the edited text, or -1 when the original line has no counterpart.
// Surviving entries are strictly increasing.
type LineMap []int

// Comments removes every comment of the requested types from src and
// returns the edited text plus the original-to-edited LineMap.
//
// When nothing matches the requested set the original text is returned
// byte-identical with a nil LineMap; no whitespace cleanup happens on
// that path.
func Comments(src string, ranges []jslex.Comment, types ...jslex.CommentType) (string, LineMap) {
	want := make(map[jslex.CommentType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	var removed []jslex.Comment
	for _, r := range ranges {
		if want[r.Type] {
			removed = append(removed, r)
		}
	}
	if len(removed) == 0 {
		return src, nil
	}

	spliced := splice(src, removed)
	preMap := mapLines(src, spliced, removed)

	cleaned, cleanMap := cleanup(spliced, strings.HasSuffix(src, "\n"))

	// Compose: original line -> spliced line -> cleaned line. A removal
	// can join two original lines onto one edited line; the first
	// original line claims it, later ones map to -1 so surviving
	// entries stay strictly increasing.
	final := make(LineMap, len(preMap))
	prev := -1
	for i, m := range preMap {
		if m < 0 || m >= len(cleanMap) {
			final[i] = -1
			continue
		}
		c := cleanMap[m]
		if c != -1 && c <= prev {
			final[i] = -1
			continue
		}
		final[i] = c
		if c != -1 {
			prev = c
		}
	}
	return cleaned, final
}

// splice copies the gaps between removed ranges.
func splice(src string, removed []jslex.Comment) string {
	var b strings.Builder
	b.Grow(len(src))
	prev := 0
	for _, r := range removed {
		b.WriteString(src[prev:r.Start])
		prev = r.End
	}
	b.WriteString(src[prev:])
	return b.String()
}

// mapLines computes, per original line, which spliced-text line its
// first surviving non-whitespace character landed on, or -1 when no
// such character survived.
func mapLines(src, spliced string, removed []jslex.Comment) LineMap {
	origStarts := lineStarts(src)
	splicedStarts := lineStarts(spliced)

	// removedBefore[k] = total removed bytes in ranges 0..k-1.
	cum := make([]int, len(removed)+1)
	for i, r := range removed {
		cum[i+1] = cum[i] + (r.End - r.Start)
	}

	lm := make(LineMap, len(origStarts))
	for li, start := range origStarts {
		end := len(src)
		if li+1 < len(origStarts) {
			end = origStarts[li+1] - 1 // exclude the newline
		}
		lm[li] = -1
		for o := start; o < end; o++ {
			c := src[o]
			if c == ' ' || c == '\t' || c == '\r' {
				continue
			}
			k := rangeContaining(removed, o)
			if k >= 0 {
				// Inside a removed range; jump past it.
				o = removed[k].End - 1
				continue
			}
			shifted := o - cum[rangesBefore(removed, o)]
			lm[li] = lineAt(splicedStarts, shifted)
			break
		}
	}
	return lm
}

// cleanup applies the whitespace normalization pass and returns the
// cleaned text plus a spliced-line -> cleaned-line map. Cleanup only
// trims trailing whitespace and deletes whole blank lines, so the map
// is derived by matching identical lines in order.
func cleanup(text string, endsWithNewline bool) (string, LineMap) {
	lines := splitLines(text)

	// Trim trailing horizontal whitespace, except on a leading
	// hashbang line which is preserved verbatim.
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		if i == 0 && strings.HasPrefix(l, "#!") {
			trimmed[i] = l
			continue
		}
		trimmed[i] = strings.TrimRight(l, " \t\r")
	}

	var kept []string
	seenContent := false
	hashbang := len(trimmed) > 0 && strings.HasPrefix(trimmed[0], "#!")
	lineMap := make(LineMap, len(trimmed))
	for i, l := range trimmed {
		blank := l == ""
		if blank {
			if !seenContent {
				lineMap[i] = -1 // leading blank, including blanks after a hashbang
				continue
			}
			if len(kept) > 0 && kept[len(kept)-1] == "" {
				lineMap[i] = -1 // collapse blank runs to one
				continue
			}
		} else if !(hashbang && i == 0) {
			seenContent = true
		}
		lineMap[i] = len(kept)
		kept = append(kept, l)
	}

	// Trailing newline policy follows the original text.
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		last := len(kept) - 1
		for i, m := range lineMap {
			if m == last {
				lineMap[i] = -1
			}
		}
		kept = kept[:last]
	}
	out := strings.Join(kept, "\n")
	if endsWithNewline && out != "" {
		out += "\n"
	}
	return out, lineMap
}

// lineStarts returns the byte offset of each line start. A trailing
// newline does not open a counted final empty line.
func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' && i+1 < len(s) {
			starts = append(starts, i+1)
		}
	}
	if s == "" {
		return nil
	}
	return starts
}

// lineAt locates the line containing offset via binary search over the
// line-start index.
func lineAt(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool {
		return starts[i] > offset
	}) - 1
}

// rangeContaining returns the index of the removed range containing
// offset, or -1.
func rangeContaining(removed []jslex.Comment, offset int) int {
	i := sort.Search(len(removed), func(k int) bool {
		return removed[k].End > offset
	})
	if i < len(removed) && removed[i].Start <= offset {
		return i
	}
	return -1
}

// rangesBefore counts removed ranges lying entirely before offset.
func rangesBefore(removed []jslex.Comment, offset int) int {
	return sort.Search(len(removed), func(k int) bool {
		return removed[k].End > offset
	})
}

// splitLines splits on newlines without counting a final empty line
// after a trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
