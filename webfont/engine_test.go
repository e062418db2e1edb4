package webfont

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"fontdl/common"
)

var woff2Data = append([]byte("wOF2\x00\x01\x00\x00"), make([]byte, 64)...)

type fakeService struct {
	srv     *httptest.Server
	chunks  []string
	failing map[string]bool
	garbage bool

	mu     sync.Mutex
	agents []string
}

func newFakeService(t *testing.T, chunks ...string) *fakeService {
	t.Helper()
	fs := &fakeService{chunks: chunks, failing: make(map[string]bool)}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/css2":
		fs.mu.Lock()
		fs.agents = append(fs.agents, r.UserAgent())
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		if r.URL.Query().Has("text") {
			fmt.Fprintf(w, "@font-face {\n  font-family: 'X';\n  src: url(%s/l/font?kit=k&v=v7) format('woff2');\n}\n", fs.srv.URL)
			return
		}
		fmt.Fprint(w, chunkStylesheet(fs.srv.URL, fs.chunks...))
	case strings.HasPrefix(r.URL.Path, "/s/") || strings.HasPrefix(r.URL.Path, "/l/"):
		if fs.failing[r.URL.Path] {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		if fs.garbage {
			fmt.Fprint(w, "<html>not a font</html>")
			return
		}
		_, _ = w.Write(woff2Data)
	default:
		http.NotFound(w, r)
	}
}

type memRecorder struct {
	names []string
}

func (m *memRecorder) StoreData(name string, _ []byte) {
	m.names = append(m.names, name)
}

func newTestDownloader(check common.TypeCheck, concurrency int, rec Recorder) *Downloader {
	return NewDownloader(NewClient(ClientOptions{TypeCheck: check}, zap.NewNop()), concurrency, rec, zap.NewNop())
}

func TestGenerate_Chunk(t *testing.T) {
	fs := newFakeService(t, "[0]", "[1]", "[2]")
	dir := t.TempDir()
	rec := &memRecorder{}
	d := newTestDownloader(common.TypeCheckStrict, 2, rec)

	r, err := NewChunkRequest(Settings{ServiceURL: fs.srv.URL + "/css2", OutDir: dir, UserAgent: "test-agent"}, Face{Family: "Noto Sans JP", Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Generate(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range 3 {
		name := fmt.Sprintf("noto-sans-jp-v52-400-%d.woff2", i)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("font %s not stored: %v", name, err)
			continue
		}
		if len(data) != len(woff2Data) {
			t.Errorf("font %s has unexpected size %d", name, len(data))
		}
		if !strings.Contains(out, "url("+name+")") {
			t.Errorf("stylesheet does not reference %s:\n%s", name, out)
		}
	}
	if strings.Contains(out, fs.srv.URL) {
		t.Errorf("stylesheet still references service:\n%s", out)
	}
	if len(fs.agents) != 1 || fs.agents[0] != "test-agent" {
		t.Errorf("unexpected user agents %v", fs.agents)
	}
	if len(rec.names) != 2 || rec.names[0] != "stylesheets/001-chunk.css" || rec.names[1] != "stylesheets/001-chunk.tree.txt" {
		t.Errorf("unexpected recorded stylesheets %v", rec.names)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestGenerate_Subset(t *testing.T) {
	fs := newFakeService(t)
	dir := t.TempDir()
	d := newTestDownloader(common.TypeCheckWarn, 1, nil)

	r, err := NewSubsetRequest(Settings{ServiceURL: fs.srv.URL + "/css2", OutDir: dir, URLPrefix: "/f/"}, Face{Family: "X", Weight: 700}, "cba")
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Generate(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name := "x-v7-700-900150983cd24fb0d6963f7d28e17f72.woff2"
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("font not stored: %v", err)
	}
	if !strings.Contains(out, "url(/f/"+name+")") {
		t.Errorf("unexpected stylesheet:\n%s", out)
	}
}

func TestGenerate_DownloadFailure(t *testing.T) {
	fs := newFakeService(t, "[0]", "[1]")
	fs.failing["/s/notosansjp/v52/abc.1.woff2"] = true
	d := newTestDownloader(common.TypeCheckOff, 1, nil)

	r, err := NewChunkRequest(Settings{ServiceURL: fs.srv.URL + "/css2", OutDir: t.TempDir()}, Face{Family: "X", Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Generate(context.Background(), d)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	var de *DownloadError
	if !errors.As(err, &de) || !strings.HasSuffix(de.URL, "abc.1.woff2") {
		t.Errorf("expected download error for failing chunk, got %v", err)
	}
	if out != "" {
		t.Errorf("no stylesheet expected on failure, got:\n%s", out)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	fs := newFakeService(t)
	d := newTestDownloader(common.TypeCheckOff, 1, nil)

	r, err := NewChunkRequest(Settings{ServiceURL: fs.srv.URL + "/missing", OutDir: t.TempDir()}, Face{Family: "X", Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Generate(context.Background(), d); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerate_TypeCheck(t *testing.T) {
	fs := newFakeService(t, "[0]")
	fs.garbage = true

	r, err := NewChunkRequest(Settings{ServiceURL: fs.srv.URL + "/css2", OutDir: t.TempDir()}, Face{Family: "X", Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Generate(context.Background(), newTestDownloader(common.TypeCheckStrict, 1, nil)); !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("strict check: expected ErrDownloadFailed, got %v", err)
	}
	if _, err := r.Generate(context.Background(), newTestDownloader(common.TypeCheckWarn, 1, nil)); err != nil {
		t.Errorf("warn check: unexpected error %v", err)
	}
}

func TestScheduler_StopsAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(context.Background(), 1)

	var ran atomic.Int32
	s.Submit(func(context.Context) error {
		ran.Add(1)
		return boom
	})
	for range 5 {
		s.Submit(func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	if err := s.Wait(); !errors.Is(err, boom) {
		t.Errorf("expected first failure, got %v", err)
	}
	if n := ran.Load(); n != 1 {
		t.Errorf("expected only failing task to run, %d ran", n)
	}
}

func TestScheduler_Capacity(t *testing.T) {
	const capacity = 3
	s := NewScheduler(context.Background(), capacity)

	var cur, peak atomic.Int32
	release := make(chan struct{})
	go func() {
		for range 10 {
			release <- struct{}{}
		}
	}()
	for range 10 {
		s.Submit(func(context.Context) error {
			n := cur.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			cur.Add(-1)
			return nil
		})
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := peak.Load(); p > capacity {
		t.Errorf("peak concurrency %d exceeds capacity %d", p, capacity)
	}
}
