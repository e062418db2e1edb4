package webfont

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestParseWeight(t *testing.T) {
	good := []struct {
		in   any
		want int
	}{
		{400, 400},
		{float64(700), 700},
		{int64(300), 300},
		{uint64(100), 100},
		{0, 0},
	}
	for _, tt := range good {
		got, err := ParseWeight(tt.in)
		if err != nil {
			t.Errorf("ParseWeight(%v): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeight(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, in := range []any{"400", -1, float64(-1), 400.5, nil, true} {
		if _, err := ParseWeight(in); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseWeight(%#v): expected ErrValidation, got %v", in, err)
		}
	}
}

func TestNewChunkRequest_Validation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if _, err := NewChunkRequest(Settings{OutDir: dir}, Face{Weight: 400}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty family, got %v", err)
	}
	if _, err := NewChunkRequest(Settings{OutDir: dir}, Face{Family: "X", Weight: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative weight, got %v", err)
	}
	if _, err := NewSubsetRequest(Settings{OutDir: dir}, Face{Family: "X", Weight: 400}, " 　 "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for blank text, got %v", err)
	}
}

func TestNewSubsetRequest_TextAfterCanonicalization(t *testing.T) {
	dir := t.TempDir()
	face := Face{Family: "Noto Sans JP", Weight: 400}

	// nothing but whitespace in the \s sense, must not become a chunk request
	for _, text := range []string{"\uFEFF", "\uFEFF \u3000\n"} {
		if _, err := NewSubsetRequest(Settings{OutDir: dir}, face, text); !errors.Is(err, ErrValidation) {
			t.Errorf("text %q: expected ErrValidation, got %v", text, err)
		}
	}

	// U+0085 is kept by Canonicalize and so is valid text
	r, err := NewSubsetRequest(Settings{OutDir: dir}, face, "\u0085")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text != "\u0085" {
		t.Errorf("unexpected canonical text %q", r.Text)
	}
	if got := parseQuery(t, r.URL()).Get("text"); got != "\u0085" {
		t.Errorf("unexpected text parameter %q", got)
	}
}

func TestNewChunkRequest_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	r, err := NewChunkRequest(Settings{OutDir: dir}, Face{Family: "Noto Sans JP", Weight: 400})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Pattern != DefaultPattern || r.Ext != DefaultExt || r.UserAgent != DefaultUserAgent || r.ServiceURL != DefaultServiceURL {
		t.Errorf("defaults not applied: %+v", r.Settings)
	}
	if r.URLPrefix != "" {
		t.Errorf("expected empty url prefix, got %q", r.URLPrefix)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("output directory was not created: %v", err)
	}
}

func TestRequestURL(t *testing.T) {
	dir := t.TempDir()

	chunk, err := NewChunkRequest(Settings{OutDir: dir}, Face{Family: "Noto Sans JP", Weight: 400, Swap: true})
	if err != nil {
		t.Fatal(err)
	}
	q := parseQuery(t, chunk.URL())
	if got := q.Get("family"); got != "Noto Sans JP:wght@400" {
		t.Errorf("unexpected family %q", got)
	}
	if got := q.Get("display"); got != "swap" {
		t.Errorf("unexpected display %q", got)
	}
	if q.Has("text") {
		t.Error("chunk request must not carry text")
	}

	subset, err := NewSubsetRequest(Settings{OutDir: dir}, Face{Family: "Noto Sans JP", Weight: 700, Italic: true}, "いあ い")
	if err != nil {
		t.Fatal(err)
	}
	q = parseQuery(t, subset.URL())
	if got := q.Get("family"); got != "Noto Sans JP:ital,wght@1,700" {
		t.Errorf("unexpected family %q", got)
	}
	if got := q.Get("text"); got != "あい" {
		t.Errorf("unexpected text %q", got)
	}
	if q.Has("display") {
		t.Error("display must be omitted without swap")
	}
	if subset.Hash != "f9b5c76a29213d21af0cc92a1a2f6fff" {
		t.Errorf("unexpected hash %q", subset.Hash)
	}
}

func TestSettingsMerge(t *testing.T) {
	base := Settings{OutDir: "a", Pattern: "p", URLPrefix: "/x/"}
	got := base.Merge(Settings{OutDir: "b", Ext: "ttf"})
	want := Settings{OutDir: "b", Pattern: "p", URLPrefix: "/x/", Ext: "ttf"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func parseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad url %q: %v", raw, err)
	}
	return u.Query()
}
