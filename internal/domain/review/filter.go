package review

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/target/prreview-api/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// DefaultSkippedSuffixes lists documentation and data/config formats that are never sent for analysis.
var DefaultSkippedSuffixes = []string{
	".md", ".markdown", ".rst", ".txt", ".adoc",
	".json", ".yaml", ".yml", ".toml", ".xml", ".ini", ".cfg", ".conf", ".env",
	".csv", ".tsv", ".lock", ".sum", ".svg", ".png", ".jpg", ".jpeg", ".gif", ".ico", ".pdf",
}

// FileFilter decides which changed files are reviewed.
type FileFilter struct {
	suffixes map[string]struct{}
}

// FilterFile is the on-disk form of a suffix list.
type FilterFile struct {
	// SkipSuffixes replaces the defaults when non-empty.
	SkipSuffixes []string `yaml:"skip_suffixes"`
	// ExtraSuffixes are added to whichever list is in effect.
	ExtraSuffixes []string `yaml:"extra_suffixes"`
}

// NewFileFilter builds a filter over the given suffixes. A nil slice selects DefaultSkippedSuffixes.
func NewFileFilter(suffixes []string) *FileFilter {
	if suffixes == nil {
		suffixes = DefaultSkippedSuffixes
	}
	f := &FileFilter{suffixes: make(map[string]struct{}, len(suffixes))}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		f.suffixes[s] = struct{}{}
	}
	return f
}

// LoadFileFilter reads a YAML suffix list. An empty path yields the default filter.
func LoadFileFilter(p string) (*FileFilter, error) {
	if p == "" {
		return NewFileFilter(nil), nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}
	var ff FilterFile
	if err := yaml.Unmarshal(b, &ff); err != nil {
		return nil, fmt.Errorf("parse filter file %s: %w", p, err)
	}
	base := ff.SkipSuffixes
	if len(base) == 0 {
		base = DefaultSkippedSuffixes
	}
	all := make([]string, 0, len(base)+len(ff.ExtraSuffixes))
	all = append(all, base...)
	all = append(all, ff.ExtraSuffixes...)
	return NewFileFilter(all), nil
}

// Skips reports whether a file name ends in one of the skipped suffixes.
func (f *FileFilter) Skips(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := f.suffixes[ext]
	return ok
}

// Suffixes returns the active suffixes in sorted order.
func (f *FileFilter) Suffixes() []string {
	out := make([]string, 0, len(f.suffixes))
	for s := range f.suffixes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Apply keeps, in input order, the files that are reviewable: not removed by the
// change and not matching a skipped suffix.
func (f *FileFilter) Apply(files []model.ChangedFile) []model.ChangedFile {
	out := make([]model.ChangedFile, 0, len(files))
	for _, cf := range files {
		if cf.Status == model.ChangedFileRemoved || f.Skips(cf.FileName) {
			continue
		}
		out = append(out, cf)
	}
	return out
}
