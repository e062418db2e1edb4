package config

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"
	"time"

	fixzip "github.com/hidez8891/zip"

	"fontdl/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// entry is a single item of the report. Either data is set or path points to
// a file or directory read when report is closed.
type entry struct {
	source string
	path   string
	stamp  time.Time
	data   []byte
}

func (e entry) describe() string {
	switch {
	case e.path == "" && e.source != "":
		return fmt.Sprintf("%s (%d bytes)", e.source, len(e.data))
	case e.path == "":
		return fmt.Sprintf("%d bytes", len(e.data))
	case e.source == e.path:
		return e.path
	default:
		return e.source + " : " + e.path
	}
}

// Report accumulates information necessary to prepare full debug report.
// It is safe to use from several goroutines.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	// snapshots of directories made by StoreCopy, removed on Close
	snapshots []string
	file      *os.File
}

// Close writes the archive and removes snapshots. Nil report is valid and
// means no report has been requested, the same is true for all other methods.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		for _, dir := range r.snapshots {
			os.RemoveAll(dir)
		}
		r.snapshots = nil
	}()
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers path of a file or directory whose content at the time of
// Close goes into the archive. Logs are stored this way.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.source != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.source, path))
	}
	e := entry{source: path, path: path}
	if p, err := filepath.Abs(path); err == nil {
		e.path = p
	}
	r.entries[name] = e
}

// StoreData puts data into the archive under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy takes snapshot of a file or directory as it is now. Files are
// kept in memory, directories are copied to a temporary location. Name is
// versioned when already taken, so the same path may be stored repeatedly.
func (r *Report) StoreCopy(name, src string) error {
	if r == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	var (
		e        = entry{source: src, stamp: time.Now()}
		snapshot string
	)

	switch {
	case info.Mode().IsRegular():
		if e.data, err = os.ReadFile(src); err != nil {
			return err
		}
	case info.IsDir():
		if snapshot, err = os.MkdirTemp("", misc.GetAppName()+"-r-"); err != nil {
			return err
		}
		// CopyFS wants destination to not exist yet
		e.path = filepath.Join(snapshot, "copy")
		if err := os.CopyFS(e.path, os.DirFS(src)); err != nil {
			os.RemoveAll(snapshot)
			return fmt.Errorf("unable to copy %s: %w", src, err)
		}
	default:
		return fmt.Errorf("%s is neither file nor directory", src)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if snapshot != "" {
		r.snapshots = append(r.snapshots, snapshot)
	}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}
	r.entries[name] = e
	return nil
}

// finalize creates the final archive (report) with all previously stored
// items, MANIFEST first.
func (r *Report) finalize() error {
	arc := fixzip.NewWriter(r.file)

	names := slices.Sorted(maps.Keys(r.entries))

	now := time.Now()
	manifest := new(bytes.Buffer)
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(manifest, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), name, e.describe())
	}
	if err := addEntry(arc, "MANIFEST", now, manifest); err != nil {
		arc.Close()
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.path == "" {
			if err := addEntry(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				arc.Close()
				return err
			}
			continue
		}
		if err := addPath(arc, name, e.path); err != nil {
			arc.Close()
			return err
		}
	}
	return arc.Close()
}

func addEntry(arc *fixzip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&fixzip.FileHeader{Name: name, Method: fixzip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// addPath adds file or whole directory tree under name. Paths which are
// gone by now are ignored.
func addPath(arc *fixzip.Writer, name, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return addFile(arc, name, src, info.ModTime())
	}
	return fs.WalkDir(os.DirFS(src), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return addFile(arc, path.Join(name, p), filepath.Join(src, filepath.FromSlash(p)), fi.ModTime())
	})
}

func addFile(arc *fixzip.Writer, name, src string, t time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return addEntry(arc, name, t, f)
}
