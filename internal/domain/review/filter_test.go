package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/model"
)

func names(files []model.ChangedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.FileName)
	}
	return out
}

func changed(ns ...string) []model.ChangedFile {
	out := make([]model.ChangedFile, 0, len(ns))
	for _, n := range ns {
		out = append(out, model.ChangedFile{FileName: n, Status: model.ChangedFileModified})
	}
	return out
}

func TestFileFilter_Apply_DropsDocsAndData(t *testing.T) {
	f := NewFileFilter(nil)

	got := f.Apply(changed("a.py", "README.md", "b.ts", "data.yaml"))

	assert.Equal(t, []string{"a.py", "b.ts"}, names(got))
}

func TestFileFilter_Apply_PreservesOrder(t *testing.T) {
	f := NewFileFilter(nil)
	in := changed("z.go", "docs/guide.MD", "a.go", "config/app.toml", "m.rs", "Makefile")

	got := f.Apply(in)

	assert.Equal(t, []string{"z.go", "a.go", "m.rs", "Makefile"}, names(got))
}

func TestFileFilter_Apply_SkipsRemovedFiles(t *testing.T) {
	f := NewFileFilter(nil)
	in := []model.ChangedFile{
		{FileName: "keep.go", Status: model.ChangedFileAdded},
		{FileName: "gone.go", Status: model.ChangedFileRemoved},
		{FileName: "moved.go", Status: model.ChangedFileRenamed},
	}

	assert.Equal(t, []string{"keep.go", "moved.go"}, names(f.Apply(in)))
}

func TestFileFilter_CustomSuffixes(t *testing.T) {
	f := NewFileFilter([]string{"go", " .PY "})

	assert.True(t, f.Skips("main.go"))
	assert.True(t, f.Skips("tool.py"))
	assert.False(t, f.Skips("README.md"))
	assert.Equal(t, []string{".go", ".py"}, f.Suffixes())
}

func TestLoadFileFilter(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		f, err := LoadFileFilter("")
		require.NoError(t, err)
		assert.True(t, f.Skips("README.md"))
	})

	t.Run("extra suffixes extend defaults", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "filter.yaml")
		require.NoError(t, os.WriteFile(p, []byte("extra_suffixes:\n  - .proto\n"), 0o600))

		f, err := LoadFileFilter(p)
		require.NoError(t, err)
		assert.True(t, f.Skips("api.proto"))
		assert.True(t, f.Skips("data.json"))
		assert.False(t, f.Skips("main.go"))
	})

	t.Run("skip suffixes replace defaults", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "filter.yaml")
		require.NoError(t, os.WriteFile(p, []byte("skip_suffixes: [.md]\n"), 0o600))

		f, err := LoadFileFilter(p)
		require.NoError(t, err)
		assert.True(t, f.Skips("README.md"))
		assert.False(t, f.Skips("data.json"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFileFilter(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "filter.yaml")
		require.NoError(t, os.WriteFile(p, []byte("skip_suffixes: {bad"), 0o600))

		_, err := LoadFileFilter(p)
		assert.Error(t, err)
	})
}
