package sourcemap

// AdjustLines rewrites the origin line of every segment referencing
// sourceIndex through lineMap (original line -> edited line, -1 for
// removed). Segments whose origin line is out of range or mapped to -1
// are dropped; segments for other sources are untouched. The generated
// line count never changes.
//
// The call is a no-op on documents that are not version 3, lack a
// string mappings field, or whose mappings fail to decode.
func (d *Document) AdjustLines(sourceIndex int, lineMap []int) {
	if !d.applicable() {
		return
	}
	lines, err := decodeMappings(d.Mappings())
	if err != nil {
		return
	}

	for li, segs := range lines {
		kept := segs[:0]
		for _, seg := range segs {
			if len(seg) < 4 || seg[1] != sourceIndex {
				kept = append(kept, seg)
				continue
			}
			ol := seg[2]
			if ol < 0 || ol >= len(lineMap) {
				continue // unrepresentable origin, drop
			}
			mapped := lineMap[ol]
			if mapped == -1 {
				continue // origin line no longer exists, drop
			}
			seg[2] = mapped
			kept = append(kept, seg)
		}
		lines[li] = kept
	}

	d.obj.Set("mappings", encodeMappings(lines))
}
