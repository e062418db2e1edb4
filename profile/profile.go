// Package profile loads download profiles and runs them.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"fontdl/webfont"
)

// Kind tells which request unit describes.
type Kind int

const (
	ChunkUnit Kind = iota
	SubsetUnit
)

func (k Kind) String() string {
	if k == SubsetUnit {
		return "subset"
	}
	return "chunk"
}

// Unit is a single validated request of a profile. Text is only used by
// subset units. Settings holds unit level overrides.
type Unit struct {
	Kind     Kind
	Settings webfont.Settings
	Face     webfont.Face
	Text     string
}

func (u Unit) String() string {
	return fmt.Sprintf("%s %s", u.Kind, u.Face)
}

// Profile is a named list of units sharing output location.
type Profile struct {
	Name string
	Path string
	// Settings are profile level overrides.
	Settings webfont.Settings
	CSSFile  string
	// EmptyDir is nil when profile does not say.
	EmptyDir *bool
	// Units are chunk units followed by subset units, in file order.
	Units []Unit
}

// Count returns number of units of given kind.
func (p *Profile) Count(kind Kind) int {
	var n int
	for _, u := range p.Units {
		if u.Kind == kind {
			n++
		}
	}
	return n
}

// Keys follow web font tooling conventions, "$schema" and anything unknown
// is ignored.
type rawSettings struct {
	OutDir    string `json:"outDir" yaml:"outDir"`
	URLPrefix string `json:"urlPrefix" yaml:"urlPrefix"`
	UserAgent string `json:"userAgent" yaml:"userAgent"`
	Pattern   string `json:"pattern" yaml:"pattern"`
	Ext       string `json:"ext" yaml:"ext"`
}

func (r rawSettings) settings() webfont.Settings {
	return webfont.Settings{
		OutDir:    r.OutDir,
		URLPrefix: r.URLPrefix,
		UserAgent: r.UserAgent,
		Pattern:   r.Pattern,
		Ext:       r.Ext,
	}
}

type rawUnit struct {
	rawSettings `yaml:",inline"`
	Family      string `json:"family" yaml:"family"`
	Weight      any    `json:"weight" yaml:"weight"`
	Italic      bool   `json:"italic" yaml:"italic"`
	Swap        bool   `json:"swap" yaml:"swap"`
	Text        any    `json:"text" yaml:"text"`
}

type rawProfile struct {
	rawSettings `yaml:",inline"`
	CSSFile     string    `json:"cssFile" yaml:"cssFile"`
	EmptyDir    *bool     `json:"emptyDir" yaml:"emptyDir"`
	Chunk       []rawUnit `json:"chunk" yaml:"chunk"`
	Subset      []rawUnit `json:"subset" yaml:"subset"`
}

// Load reads profile from JSON or YAML file (by extension) and validates all
// of its units.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read profile: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := Parse(data, filepath.Ext(path), name)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse decodes profile, ext selects format (".json", ".yaml" or ".yml").
func Parse(data []byte, ext, name string) (*Profile, error) {
	var raw rawProfile
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("unable to decode json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("unable to decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", ext)
	}

	p := &Profile{
		Name:     name,
		Settings: raw.settings(),
		CSSFile:  raw.CSSFile,
		EmptyDir: raw.EmptyDir,
	}
	for i, ru := range raw.Chunk {
		u, err := ru.unit(ChunkUnit)
		if err != nil {
			return nil, fmt.Errorf("chunk #%d: %w", i, err)
		}
		p.Units = append(p.Units, u)
	}
	for i, ru := range raw.Subset {
		u, err := ru.unit(SubsetUnit)
		if err != nil {
			return nil, fmt.Errorf("subset #%d: %w", i, err)
		}
		p.Units = append(p.Units, u)
	}
	return p, nil
}

func (r rawUnit) unit(kind Kind) (Unit, error) {
	weight, err := webfont.ParseWeight(r.Weight)
	if err != nil {
		return Unit{}, err
	}
	u := Unit{
		Kind:     kind,
		Settings: r.settings(),
		Face:     webfont.Face{Family: r.Family, Weight: weight, Italic: r.Italic, Swap: r.Swap},
	}
	if err := u.Face.Validate(); err != nil {
		return Unit{}, err
	}
	if kind == SubsetUnit {
		if u.Text, err = webfont.FlattenText(r.Text); err != nil {
			return Unit{}, err
		}
		if err := webfont.ValidateText(u.Text); err != nil {
			return Unit{}, err
		}
	}
	return u, nil
}
