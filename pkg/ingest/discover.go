package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xhad/stressdocs/internal/models"
)

// Discover lists the files directly inside dir whose lowercased name
// matches an include pattern and is not excluded. Subdirectories are
// not searched. Files are grouped by the first pattern they match, in
// pattern order, and sorted by name within a group.
func Discover(dir string, include, exclude []string) ([]models.SourceFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputDirNotFound, dir)
	}

	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(name)] = true
	}

	var files []models.SourceFile
	rank := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		if excluded[lower] {
			continue
		}
		group := matchIndex(lower, include)
		if group < 0 {
			continue
		}
		rank[name] = group

		fi, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		files = append(files, models.SourceFile{
			Path: filepath.Join(dir, name),
			Name: name,
			Ext:  strings.ToLower(filepath.Ext(name)),
			Size: fi.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		ri, rj := rank[files[i].Name], rank[files[j].Name]
		if ri != rj {
			return ri < rj
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func matchIndex(name string, patterns []string) int {
	for i, pattern := range patterns {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), name); ok {
			return i
		}
	}
	return -1
}
