package webfont

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"fontdl/css"
)

// Resource is a single font file referenced by stylesheet.
type Resource struct {
	URL      string
	Label    string
	Version  string
	Ext      string
	Filename string
	// Path is where the file is stored locally.
	Path string
}

// Request is implemented by ChunkRequest and SubsetRequest.
type Request interface {
	// URL returns stylesheet address.
	URL() string
	// Resolve finds resources in parsed stylesheet and rewrites references
	// to point to local copies. It does no I/O.
	Resolve(sheet *css.Stylesheet) ([]Resource, error)

	download(ctx context.Context, d *Downloader, res []Resource) error
	userAgent() string
	kind() string
}

// Recorder keeps copies of received stylesheets, debug report implements it.
type Recorder interface {
	StoreData(name string, data []byte)
}

// Downloader executes requests.
type Downloader struct {
	fetch       Fetcher
	parser      *css.Parser
	concurrency int
	rec         Recorder
	seq         atomic.Int32
	log         *zap.Logger
}

// NewDownloader creates a new Downloader. Recorder may be nil.
func NewDownloader(fetch Fetcher, concurrency int, rec Recorder, log *zap.Logger) *Downloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{
		fetch:       fetch,
		parser:      css.NewParser(log),
		concurrency: concurrency,
		rec:         rec,
		log:         log.Named("webfont"),
	}
}

// Generate fetches stylesheet for the request, downloads every font it
// references and returns stylesheet rewritten to use local files. Nothing is
// returned unless all downloads succeeded.
func (d *Downloader) Generate(ctx context.Context, req Request) (string, error) {
	url := req.URL()
	text, err := d.fetch.Stylesheet(ctx, url, req.userAgent())
	if err != nil {
		return "", err
	}
	sheet := d.parser.Parse([]byte(text), url)
	if d.rec != nil {
		name := fmt.Sprintf("stylesheets/%03d-%s", d.seq.Add(1), req.kind())
		d.rec.StoreData(name+".css", []byte(text))
		d.rec.StoreData(name+".tree.txt", []byte(sheet.Dump()))
	}
	for _, w := range sheet.Warnings {
		d.log.Warn("Stylesheet parsing problem", zap.String("url", url), zap.String("warning", w))
	}

	res, err := req.Resolve(sheet)
	if err != nil {
		return "", err
	}
	if err := req.download(ctx, d, res); err != nil {
		return "", err
	}
	d.log.Debug("Request completed", zap.String("url", url), zap.Int("files", len(res)))
	return sheet.String(), nil
}

// Generate is a shortcut for d.Generate(ctx, r).
func (r *ChunkRequest) Generate(ctx context.Context, d *Downloader) (string, error) {
	return d.Generate(ctx, r)
}

// Generate is a shortcut for d.Generate(ctx, r).
func (r *SubsetRequest) Generate(ctx context.Context, d *Downloader) (string, error) {
	return d.Generate(ctx, r)
}
