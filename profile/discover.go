package profile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Discover lists profile files in dir in natural order. JSON schema file
// which may live next to profiles is skipped.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.EqualFold(name, "schema.json") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".yaml", ".yml":
			names = append(names, name)
		}
	}
	sort.Sort(natural.StringSlice(names))

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
