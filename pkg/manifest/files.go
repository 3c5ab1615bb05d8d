package manifest

import (
	"encoding/json"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cleanpack/cleanpack/pkg/jsondoc"
)

// optimizeFilesField removes duplicate files entries and entries whose
// coverage is implied by another entry, keeping survivor order.
func optimizeFilesField(obj *jsondoc.Object) error {
	if !obj.Has("files") {
		return nil
	}
	var files []string
	if err := obj.Get("files", &files); err != nil {
		// Not a string array; leave it alone.
		return nil
	}

	optimized := OptimizeFiles(files)
	if len(optimized) == len(files) {
		return nil
	}
	return obj.Set("files", optimized)
}

// OptimizeFiles returns files without duplicates and without entries
// already covered by another entry.
func OptimizeFiles(files []string) []string {
	var out []string
	for i, f := range files {
		redundant := false
		for j, other := range files {
			if i == j {
				continue
			}
			if f == other || (Covers(other, f) && Covers(f, other)) {
				// Equivalent entries: the first occurrence wins.
				redundant = j < i
			} else if Covers(other, f) {
				redundant = true
			}
			if redundant {
				break
			}
		}
		if !redundant {
			out = append(out, f)
		}
	}
	return out
}

// Covers reports whether files entry a makes entry b redundant: b
// names the same path, a path under directory a, or a path matched by
// glob a.
func Covers(a, b string) bool {
	a = strings.TrimSuffix(strings.TrimPrefix(a, "./"), "/")
	b = strings.TrimSuffix(strings.TrimPrefix(b, "./"), "/")
	if a == b {
		return true
	}
	if strings.HasPrefix(b, a+"/") {
		return true
	}
	if ok, err := doublestar.Match(a, b); err == nil && ok {
		return true
	}
	return false
}

// entryPointFields are the manifest fields that hold a single path
// into the package.
var entryPointFields = []string{
	"main", "module", "browser", "types", "typings", "unpkg", "exports",
}

// ApplyMoves rewrites manifest entry points through a move table after
// a flatten, so main/module/types keep pointing at the relocated
// files. String-valued fields are rewritten directly; the exports map
// is rewritten recursively.
func ApplyMoves(obj *jsondoc.Object, moves map[string]string) error {
	for _, field := range entryPointFields {
		raw, ok := obj.Raw(field)
		if !ok {
			continue
		}
		rewritten, changed, err := rewriteValue(raw, moves)
		if err != nil {
			return err
		}
		if changed {
			obj.SetRaw(field, rewritten)
		}
	}
	return nil
}

// rewriteValue handles both plain string entry points and nested
// conditional-export objects.
func rewriteValue(raw []byte, moves map[string]string) ([]byte, bool, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return raw, false, err
		}
		moved, ok := lookupMove(s, moves)
		if !ok {
			return raw, false, nil
		}
		out, err := json.Marshal(moved)
		return out, true, err
	}
	if len(raw) > 0 && raw[0] == '{' {
		nested, err := jsondoc.Parse(raw)
		if err != nil {
			return raw, false, err
		}
		changed := false
		for _, k := range nested.Keys() {
			sub, _ := nested.Raw(k)
			rewritten, subChanged, err := rewriteValue(sub, moves)
			if err != nil {
				return raw, false, err
			}
			if subChanged {
				nested.SetRaw(k, rewritten)
				changed = true
			}
		}
		if !changed {
			return raw, false, nil
		}
		out, err := nested.MarshalJSON()
		return out, changed, err
	}
	return raw, false, nil
}

// lookupMove resolves a manifest path (usually "./dist/x.js" style)
// against the move table.
func lookupMove(entry string, moves map[string]string) (string, bool) {
	key := strings.TrimPrefix(entry, "./")
	moved, ok := moves[key]
	if !ok {
		return "", false
	}
	if strings.HasPrefix(entry, "./") {
		return "./" + moved, true
	}
	return moved, true
}
