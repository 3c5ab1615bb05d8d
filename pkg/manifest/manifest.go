// Package manifest transforms a package.json for publication: it
// prunes development-only fields, filters lifecycle scripts, folds
// publishConfig overrides in, and tidies the files allow-list. Field
// order of everything untouched is preserved.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleanpack/cleanpack/pkg/jsondoc"
)

// Filename is the manifest file name at the package root.
const Filename = "package.json"

// DefaultFields are the dependency fields deleted by default.
var DefaultFields = []string{
	"devDependencies",
}

// DefaultKeepScripts are the lifecycle scripts that survive filtering
// by default: the hooks npm runs on the consumer's machine at install
// time. Everything else has already served its purpose by publish time.
var DefaultKeepScripts = []string{
	"preinstall",
	"install",
	"postinstall",
}

// Options controls Clean.
type Options struct {
	// Fields to delete in addition to DefaultFields.
	Fields []string

	// KeepScripts replaces DefaultKeepScripts when non-empty.
	KeepScripts []string
}

// Load reads and parses the manifest under root.
func Load(root string) (*jsondoc.Object, error) {
	data, err := os.ReadFile(filepath.Join(root, Filename))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	obj, err := jsondoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return obj, nil
}

// Save writes the manifest back under root, pretty-printed with a
// trailing newline.
func Save(root string, obj *jsondoc.Object) error {
	data, err := obj.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, Filename), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Clean applies every manifest transform in place.
func Clean(obj *jsondoc.Object, opts Options) error {
	for _, f := range DefaultFields {
		obj.Delete(f)
	}
	for _, f := range opts.Fields {
		obj.Delete(f)
	}

	keep := opts.KeepScripts
	if len(keep) == 0 {
		keep = DefaultKeepScripts
	}
	if err := filterScripts(obj, keep); err != nil {
		return err
	}

	if err := foldPublishConfig(obj); err != nil {
		return err
	}

	return optimizeFilesField(obj)
}

// filterScripts drops every scripts entry not on the keep list,
// deleting the field entirely when nothing survives.
func filterScripts(obj *jsondoc.Object, keep []string) error {
	if !obj.Has("scripts") {
		return nil
	}
	scripts, err := obj.Object("scripts")
	if err != nil {
		return fmt.Errorf("parsing scripts: %w", err)
	}

	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	for _, name := range scripts.Keys() {
		if !keepSet[name] {
			scripts.Delete(name)
		}
	}

	if len(scripts.Keys()) == 0 {
		obj.Delete("scripts")
		return nil
	}
	data, err := scripts.MarshalJSON()
	if err != nil {
		return err
	}
	obj.SetRaw("scripts", data)
	return nil
}

// foldPublishConfig shallow-merges publishConfig entries over the
// top-level fields they shadow, then deletes publishConfig.
func foldPublishConfig(obj *jsondoc.Object) error {
	if !obj.Has("publishConfig") {
		return nil
	}
	pc, err := obj.Object("publishConfig")
	if err != nil {
		return fmt.Errorf("parsing publishConfig: %w", err)
	}
	for _, key := range pc.Keys() {
		raw, _ := pc.Raw(key)
		obj.SetRaw(key, raw)
	}
	obj.Delete("publishConfig")
	return nil
}
