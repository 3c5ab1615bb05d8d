// Package sourcemap edits source-map v3 documents: it can rewrite
// per-segment origin lines after a file edit, and re-point the sources
// list after files move on disk. Anything that is not a version-3
// document with a string mappings field is passed through untouched.
package sourcemap

import (
	"github.com/cleanpack/cleanpack/pkg/jsondoc"
)

// Version is the only mapping-format version these transforms apply to.
const Version = 3

// Document wraps a parsed source-map JSON object. Unknown fields ride
// along unchanged.
type Document struct {
	obj *jsondoc.Object
}

// Parse decodes a source-map file. The JSON merely has to be an
// object; version and mappings checks happen per transform so a
// foreign document round-trips untouched.
func Parse(data []byte) (*Document, error) {
	obj, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Document{obj: obj}, nil
}

// Wrap adopts an already-parsed object.
func Wrap(obj *jsondoc.Object) *Document {
	return &Document{obj: obj}
}

// applicable reports whether the transforms may touch this document:
// version 3 and a string mappings field.
func (d *Document) applicable() bool {
	var v int
	if err := d.obj.Get("version", &v); err != nil || v != Version {
		return false
	}
	_, ok := d.obj.String("mappings")
	return ok
}

// Mappings returns the encoded mappings string.
func (d *Document) Mappings() string {
	s, _ := d.obj.String("mappings")
	return s
}

// Sources returns the sources list, or nil when absent.
func (d *Document) Sources() []string {
	var out []string
	if err := d.obj.Get("sources", &out); err != nil {
		return nil
	}
	return out
}

// SourceRoot returns the sourceRoot prefix, or "".
func (d *Document) SourceRoot() string {
	s, _ := d.obj.String("sourceRoot")
	return s
}

// MarshalIndent serializes the document pretty-printed with a trailing
// newline, preserving field order and unrecognized fields.
func (d *Document) MarshalIndent() ([]byte, error) {
	return d.obj.MarshalIndent()
}
