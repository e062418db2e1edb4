// Package archive bundles download results.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// Pack stores every regular file under dir into zip archive dest. Entry
// names are relative to dir and slash separated. dest itself is skipped
// when it is located inside dir. Returns number of stored files.
func Pack(dir, dest string) (int, error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("unable to create archive (%s): %w", dest, err)
	}
	defer out.Close()

	w := fixzip.NewWriter(out)

	var count int
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// ignore directories, links, sockets, etc.
			return nil
		}
		if abs, err := filepath.Abs(p); err == nil && abs == absDest {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !isSafePath(name) {
			return fmt.Errorf("archive entry %q: unsafe path (absolute or contains path traversal)", name)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := addFile(w, name, p, info); err != nil {
			return fmt.Errorf("unable to add %s to archive: %w", p, err)
		}
		count++
		return nil
	})
	if err != nil {
		w.Close()
		return count, err
	}
	if err := w.Close(); err != nil {
		return count, fmt.Errorf("unable to finalize archive (%s): %w", dest, err)
	}
	return count, nil
}

func addFile(w *fixzip.Writer, name, src string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fw, err := w.CreateHeader(&fixzip.FileHeader{Name: name, Method: fixzip.Deflate, Modified: info.ModTime()})
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, in)
	return err
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if name == "" || path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
