package webfont

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pattern tokens.
const (
	TokenFamily  = "[family]"
	TokenVersion = "[version]"
	TokenWeight  = "[weight]"
	TokenItalic  = "[italic]"
	TokenLabel   = "[label]"
	TokenExt     = "[ext]"
)

// ItalicMarker is put in place of [italic] for italic faces.
const ItalicMarker = "i"

// Fields are values file name pattern is expanded with. Version, Label and
// Ext become known only after service response has been parsed.
type Fields struct {
	Family  string
	Version string
	Weight  int
	Italic  bool
	Label   string
	Ext     string
}

// FormatFamily turns "Noto Sans JP" into "noto-sans-jp".
func FormatFamily(family string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(family), " ", "-")
}

// FormatWeight turns 400 into "400".
func FormatWeight(weight int) string {
	return strconv.Itoa(weight)
}

// FormatItalic returns ItalicMarker for italic faces and empty string otherwise.
func FormatItalic(italic bool) string {
	if italic {
		return ItalicMarker
	}
	return ""
}

// DeriveFilename expands pattern. Every token is replaced once.
func DeriveFilename(pattern string, f Fields) (string, error) {
	if f.Version == "" || f.Label == "" || f.Ext == "" {
		return "", fmt.Errorf("%w: version %q, label %q, extension %q", ErrMissingMetadata, f.Version, f.Label, f.Ext)
	}
	name := pattern
	for _, sub := range [...][2]string{
		{TokenFamily, FormatFamily(f.Family)},
		{TokenVersion, f.Version},
		{TokenWeight, FormatWeight(f.Weight)},
		{TokenItalic, FormatItalic(f.Italic)},
		{TokenLabel, f.Label},
		{TokenExt, f.Ext},
	} {
		name = strings.Replace(name, sub[0], sub[1], 1)
	}
	return name, nil
}
