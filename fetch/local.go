package fetch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// maxLocalFileSize skips anything too large to be source code.
const maxLocalFileSize = 1 << 20 // 1 MiB

// LoadDirectory walks a local source tree and returns the analyzable files,
// applying the same relevance filters as the GitHub fetcher. Paths in the
// result are slash-separated and relative to root.
func LoadDirectory(root string) (map[string]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	files := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirectories[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !includeFile(rel) {
			return nil
		}
		if fi, err := d.Info(); err != nil || fi.Size() > maxLocalFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files[rel] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
