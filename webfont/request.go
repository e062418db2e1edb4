package webfont

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Defaults used when neither configuration nor profile set a value.
const (
	DefaultServiceURL = "https://fonts.googleapis.com/css2"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	DefaultPattern    = "[family]-[version]-[weight][italic]-[label].[ext]"
	DefaultExt        = "woff2"
	DefaultOutDir     = "downloads"
	DefaultCSSFile    = "font-face.css"
)

// Settings controls where and how resources of a single request are stored.
type Settings struct {
	ServiceURL string
	URLPrefix  string
	OutDir     string
	UserAgent  string
	Pattern    string
	Ext        string
}

// Merge returns s with every non-empty field of over applied on top.
func (s Settings) Merge(over Settings) Settings {
	pick := func(base, o string) string {
		if o != "" {
			return o
		}
		return base
	}
	return Settings{
		ServiceURL: pick(s.ServiceURL, over.ServiceURL),
		URLPrefix:  pick(s.URLPrefix, over.URLPrefix),
		OutDir:     pick(s.OutDir, over.OutDir),
		UserAgent:  pick(s.UserAgent, over.UserAgent),
		Pattern:    pick(s.Pattern, over.Pattern),
		Ext:        pick(s.Ext, over.Ext),
	}
}

// WithDefaults fills empty fields with package defaults. URLPrefix is
// allowed to stay empty.
func (s Settings) WithDefaults() Settings {
	return Settings{
		ServiceURL: DefaultServiceURL,
		OutDir:     DefaultOutDir,
		UserAgent:  DefaultUserAgent,
		Pattern:    DefaultPattern,
		Ext:        DefaultExt,
	}.Merge(s)
}

// Face identifies requested font family, weight and style.
type Face struct {
	Family string
	Weight int
	Italic bool
	Swap   bool
}

// Validate checks mandatory fields.
func (f Face) Validate() error {
	if strings.TrimSpace(f.Family) == "" {
		return fmt.Errorf("%w: family is required", ErrValidation)
	}
	if f.Weight < 0 {
		return fmt.Errorf("%w: weight must be a non-negative integer, got %d", ErrValidation, f.Weight)
	}
	return nil
}

func (f Face) String() string {
	return fmt.Sprintf("%s %d%s", f.Family, f.Weight, FormatItalic(f.Italic))
}

// ParseWeight converts weight value decoded from JSON or YAML profile. Only
// non-negative integral numbers are accepted: strings, fractions and
// negative values are rejected, nil means weight is missing.
func ParseWeight(v any) (int, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: weight is required", ErrValidation)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case float64:
		f = t
	default:
		return 0, fmt.Errorf("%w: weight must be an integer, got %T (%v)", ErrValidation, v, v)
	}
	if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: weight must be a non-negative integer, got %v", ErrValidation, v)
	}
	return int(f), nil
}

// ValidateText checks that something is left of subset text after
// canonicalization.
func ValidateText(text string) error {
	if Canonicalize(text) == "" {
		return fmt.Errorf("%w: subset text must not be empty", ErrValidation)
	}
	return nil
}

// ChunkRequest downloads every chunk font service splits requested face into.
type ChunkRequest struct {
	Settings
	Face
}

// NewChunkRequest validates face, applies defaults and makes sure output
// directory exists.
func NewChunkRequest(s Settings, f Face) (*ChunkRequest, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r := &ChunkRequest{Settings: s.WithDefaults(), Face: f}
	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}
	return r, nil
}

// URL returns stylesheet address.
func (r *ChunkRequest) URL() string {
	return buildURL(r.ServiceURL, r.Face, "")
}

// SubsetRequest downloads single font file covering exactly the glyphs of Text.
type SubsetRequest struct {
	Settings
	Face
	// Text is canonical, see Canonicalize.
	Text string
	Hash string
}

// NewSubsetRequest validates face and text, canonicalizes text, applies
// defaults and makes sure output directory exists.
func NewSubsetRequest(s Settings, f Face, text string) (*SubsetRequest, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	canonical := Canonicalize(text)
	r := &SubsetRequest{Settings: s.WithDefaults(), Face: f, Text: canonical, Hash: Hash(canonical)}
	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}
	return r, nil
}

// URL returns stylesheet address.
func (r *SubsetRequest) URL() string {
	return buildURL(r.ServiceURL, r.Face, r.Text)
}

func buildURL(service string, f Face, text string) string {
	family := f.Family + ":wght@" + strconv.Itoa(f.Weight)
	if f.Italic {
		family = f.Family + ":ital,wght@1," + strconv.Itoa(f.Weight)
	}
	q := url.Values{}
	q.Set("family", family)
	if text != "" {
		q.Set("text", text)
	}
	if f.Swap {
		q.Set("display", "swap")
	}
	sep := "?"
	if strings.Contains(service, "?") {
		sep = "&"
	}
	return service + sep + q.Encode()
}
