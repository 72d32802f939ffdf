package oracle

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalSourceFS implements SourceFS over the local disk, skipping hidden
// entries the way the teacher's workspace indexer does (BuildWorkspaceIndex
// / indexDirectory skip hidden files and common ignored directories).
type LocalSourceFS struct {
	// Ignore names directories to skip entirely (e.g. "vendor", ".git").
	Ignore map[string]bool
}

// NewLocalSourceFS returns a LocalSourceFS with a sensible default ignore
// set.
func NewLocalSourceFS() *LocalSourceFS {
	return &LocalSourceFS{Ignore: map[string]bool{
		".git": true, "vendor": true, "node_modules": true,
	}}
}

func (fs *LocalSourceFS) Walk(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if fs.Ignore[name] {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path)
	})
}

func (fs *LocalSourceFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
