package cleanpack

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpack/cleanpack/pkg/jsondoc"
	"github.com/cleanpack/cleanpack/pkg/sourcemap"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func TestPrepare(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{
  "name": "pkg",
  "version": "1.0.0",
  "files": ["lib"],
  "scripts": {"build": "tsc", "postinstall": "node setup.js"},
  "devDependencies": {"typescript": "^5.0.0"}
}`,
		"README.md":         "docs",
		"lib/index.js":      "// note\nmodule.exports = 1;\n",
		"lib/index.js.map":  `{"version":3,"sources":["index.js"],"mappings":"AAAA;AACA"}`,
		"lib/index.test.js": "test();\n",
		".DS_Store":         "",
		"stray.txt":         "not published",
	})

	report, err := Prepare(context.Background(), root,
		WithCommentTypes(TypeRegular, TypeJSDoc),
		WithExclude("*.test.js"),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesEdited)
	assert.Equal(t, 1, report.MapsAdjusted)
	assert.Equal(t, 1, report.JunkRemoved)
	assert.Equal(t, 1, report.Excluded)
	assert.Equal(t, 1, report.Disallowed)

	assert.Equal(t, "module.exports = 1;\n", readFile(t, root, "lib/index.js"))

	obj, err := jsondoc.Parse([]byte(readFile(t, root, "lib/index.js.map")))
	require.NoError(t, err)
	assert.Equal(t, ";AAAA", sourcemap.Wrap(obj).Mappings())

	mf, err := jsondoc.Parse([]byte(readFile(t, root, "package.json")))
	require.NoError(t, err)
	assert.False(t, mf.Has("devDependencies"))
	scripts, err := mf.Object("scripts")
	require.NoError(t, err)
	assert.Equal(t, []string{"postinstall"}, scripts.Keys())

	assert.False(t, exists(root, ".DS_Store"))
	assert.False(t, exists(root, "lib/index.test.js"))
	assert.False(t, exists(root, "stray.txt"))
	assert.True(t, exists(root, "README.md"), "root docs always published")
}

func TestPrepare_Flatten(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{
  "name": "pkg",
  "version": "1.0.0",
  "main": "./dist/index.js",
  "types": "./dist/index.d.ts"
}`,
		"dist/index.js":     "code();\n",
		"dist/index.d.ts":   "export {};\n",
		"dist/index.js.map": `{"version":3,"sources":["../src/index.ts"],"mappings":"AAAA"}`,
		"src/index.ts":      "code();\n",
	})

	report, err := Prepare(context.Background(), root, WithFlattenDir("dist"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesMoved)
	assert.Equal(t, 1, report.MapsRewritten)
	assert.False(t, exists(root, "dist"))
	assert.Equal(t, "code();\n", readFile(t, root, "index.js"))

	mf, err := jsondoc.Parse([]byte(readFile(t, root, "package.json")))
	require.NoError(t, err)
	main, _ := mf.String("main")
	assert.Equal(t, "./index.js", main)
	typ, _ := mf.String("types")
	assert.Equal(t, "./index.d.ts", typ)

	obj, err := jsondoc.Parse([]byte(readFile(t, root, "index.js.map")))
	require.NoError(t, err)
	assert.Equal(t, []string{"./src/index.ts"}, sourcemap.Wrap(obj).Sources())
}

func TestPrepare_NoOptionsStillCleansManifest(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{"name":"pkg","devDependencies":{"x":"1"}}`,
		"index.js":     "// kept, no comment types requested\ncode();\n",
	})

	report, err := Prepare(context.Background(), root)
	require.NoError(t, err)

	assert.Zero(t, report.FilesEdited)
	assert.Contains(t, readFile(t, root, "index.js"), "// kept")

	mf, err := jsondoc.Parse([]byte(readFile(t, root, "package.json")))
	require.NoError(t, err)
	assert.False(t, mf.Has("devDependencies"))
}

func TestPrepare_MissingManifest(t *testing.T) {
	_, err := Prepare(context.Background(), t.TempDir())
	assert.Error(t, err)
}
