package sourcemap

import (
	"fmt"
	"strings"
)

// Base64 VLQ, as used by the v3 mappings field: little-endian groups
// of 5 value bits per character, bit 5 as the continuation flag, sign
// in the lowest bit of the first group.

const b64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var b64Values = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(b64Chars); i++ {
		t[b64Chars[i]] = int8(i)
	}
	return t
}()

// appendVLQ encodes v and appends it to dst.
func appendVLQ(dst []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 0x1f
		u >>= 5
		if u != 0 {
			digit |= 0x20
		}
		dst = append(dst, b64Chars[digit])
		if u == 0 {
			return dst
		}
	}
}

// decodeVLQ decodes one value starting at s[pos] and returns it along
// with the position after it.
func decodeVLQ(s string, pos int) (value, next int, err error) {
	shift := uint(0)
	u := 0
	for {
		if pos >= len(s) {
			return 0, 0, fmt.Errorf("truncated VLQ")
		}
		d := b64Values[s[pos]]
		if d < 0 {
			return 0, 0, fmt.Errorf("invalid VLQ character %q", s[pos])
		}
		pos++
		u |= int(d&0x1f) << shift
		if d&0x20 == 0 {
			break
		}
		shift += 5
	}
	if u&1 != 0 {
		return -(u >> 1), pos, nil
	}
	return u >> 1, pos, nil
}

// decodeMappings expands an encoded mappings string into per-line
// segment lists with absolute field values. Segment layout is
// {generatedColumn, sourceIndex, originLine, originColumn[, nameIndex]}
// for 4/5-field segments; bare 1-field segments carry only the column.
func decodeMappings(s string) ([][][]int, error) {
	rawLines := strings.Split(s, ";")
	lines := make([][][]int, len(rawLines))

	// Generated column resets per line; the remaining fields are
	// running values across the whole document.
	src, origLine, origCol, name := 0, 0, 0, 0
	for li, rawLine := range rawLines {
		genCol := 0
		if rawLine == "" {
			continue
		}
		for _, rawSeg := range strings.Split(rawLine, ",") {
			if rawSeg == "" {
				continue
			}
			var fields []int
			pos := 0
			for pos < len(rawSeg) {
				v, next, err := decodeVLQ(rawSeg, pos)
				if err != nil {
					return nil, err
				}
				fields = append(fields, v)
				pos = next
			}
			switch len(fields) {
			case 1:
				genCol += fields[0]
				lines[li] = append(lines[li], []int{genCol})
			case 4, 5:
				genCol += fields[0]
				src += fields[1]
				origLine += fields[2]
				origCol += fields[3]
				seg := []int{genCol, src, origLine, origCol}
				if len(fields) == 5 {
					name += fields[4]
					seg = append(seg, name)
				}
				lines[li] = append(lines[li], seg)
			default:
				return nil, fmt.Errorf("segment with %d fields", len(fields))
			}
		}
	}
	return lines, nil
}

// encodeMappings is the inverse of decodeMappings. Empty lines encode
// as empty runs between separators, so the generated line count is
// preserved exactly.
func encodeMappings(lines [][][]int) string {
	var b []byte
	src, origLine, origCol, name := 0, 0, 0, 0
	for li, segs := range lines {
		if li > 0 {
			b = append(b, ';')
		}
		genCol := 0
		for si, seg := range segs {
			if si > 0 {
				b = append(b, ',')
			}
			b = appendVLQ(b, seg[0]-genCol)
			genCol = seg[0]
			if len(seg) == 1 {
				continue
			}
			b = appendVLQ(b, seg[1]-src)
			src = seg[1]
			b = appendVLQ(b, seg[2]-origLine)
			origLine = seg[2]
			b = appendVLQ(b, seg[3]-origCol)
			origCol = seg[3]
			if len(seg) == 5 {
				b = appendVLQ(b, seg[4]-name)
				name = seg[4]
			}
		}
	}
	return string(b)
}
