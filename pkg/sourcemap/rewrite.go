package sourcemap

import (
	"path"
	"strings"
)

// RewriteSources re-points the sources list after files moved on disk.
//
// oldPath and newPath are the mapping file's package-root-relative
// locations before and after the move; moves maps every relocated
// file's old root-relative path to its new one. Each source entry is
// resolved against the old location (folding in sourceRoot), redirected
// when the referenced file itself moved, and re-expressed relative to
// the new location. sourceRoot is deleted afterwards since its effect
// is now baked into every entry.
//
// Resolving first and re-relativizing second is what keeps references
// working when the map and its sources move by different amounts.
func (d *Document) RewriteSources(oldPath, newPath string, moves map[string]string) {
	var v int
	if err := d.obj.Get("version", &v); err != nil || v != Version {
		return
	}
	sources := d.Sources()
	if sources == nil {
		return
	}

	oldDir := path.Dir(toSlash(oldPath))
	newDir := path.Dir(toSlash(newPath))
	root := toSlash(d.SourceRoot())

	rewritten := make([]string, len(sources))
	for i, src := range sources {
		resolved := path.Join(oldDir, root, toSlash(src))
		if moved, ok := moves[resolved]; ok {
			resolved = toSlash(moved)
		}
		rewritten[i] = relSlash(newDir, resolved)
	}

	d.obj.Set("sources", rewritten)
	d.obj.Delete("sourceRoot")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// relSlash expresses target relative to base, both slash-separated and
// relative to the same root. Results that do not climb out of base get
// an explicit "./" prefix.
func relSlash(base, target string) string {
	base = path.Clean(base)
	target = path.Clean(target)
	if base == "." {
		return dotPrefix(target)
	}

	baseParts := strings.Split(base, "/")
	targetParts := strings.Split(target, "/")

	common := 0
	for common < len(baseParts) && common < len(targetParts) &&
		baseParts[common] == targetParts[common] {
		common++
	}

	var parts []string
	for i := common; i < len(baseParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	if len(parts) == 0 {
		return "./"
	}
	return dotPrefix(path.Join(parts...))
}

func dotPrefix(p string) string {
	if strings.HasPrefix(p, "../") || p == ".." {
		return p
	}
	return "./" + p
}
