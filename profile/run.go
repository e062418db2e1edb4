package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fontdl/common"
	"fontdl/webfont"
)

// Options are run wide settings coming from configuration and command line.
type Options struct {
	// Defaults is the lowest settings layer. Its OutDir is the root for
	// profiles which do not set their own.
	Defaults webfont.Settings
	CSSFile  string
	EmptyDir bool
	// Keep prevents emptying output directories whatever profiles say.
	Keep     bool
	OnError  common.FailurePolicy
}

// Result describes what has been produced.
type Result struct {
	OutDir    string
	CSSPath   string
	Succeeded int
	Failed    int
}

// Runner processes profiles one unit at a time.
type Runner struct {
	d    *webfont.Downloader
	opts Options
	log  *zap.Logger
}

// NewRunner creates a new Runner.
func NewRunner(d *webfont.Downloader, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{d: d, opts: opts, log: log.Named("profile")}
}

// OutDir returns where profile results go.
func (r *Runner) OutDir(p *Profile) string {
	if p.Settings.OutDir != "" {
		return p.Settings.OutDir
	}
	return filepath.Join(r.opts.Defaults.OutDir, slug.Make(p.Name))
}

// Run downloads everything profile asks for and writes combined stylesheet.
// Profile without units is left alone, output directory is not touched.
// With abort policy the first failed unit stops processing and nothing is
// written. With skip policy failed units are left out and their errors are
// returned combined after stylesheet has been written.
func (r *Runner) Run(ctx context.Context, p *Profile) (*Result, error) {
	res := &Result{OutDir: r.OutDir(p)}
	if len(p.Units) == 0 {
		r.log.Warn("Nothing to download", zap.String("profile", p.Name))
		return res, nil
	}

	cssFile := r.opts.CSSFile
	if p.CSSFile != "" {
		cssFile = p.CSSFile
	}
	if cssFile == "" {
		cssFile = webfont.DefaultCSSFile
	}
	res.CSSPath = filepath.Join(res.OutDir, cssFile)

	emptyDir := r.opts.EmptyDir
	if p.EmptyDir != nil {
		emptyDir = *p.EmptyDir
	}
	if emptyDir && !r.opts.Keep {
		if err := removeDir(res.OutDir); err != nil {
			return nil, err
		}
		r.log.Debug("Output directory emptied", zap.String("dir", res.OutDir))
	}

	base := r.opts.Defaults.Merge(p.Settings)
	base.OutDir = res.OutDir

	var (
		parts []string
		errs  error
	)
	for i, u := range p.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.log.Info("Processing unit", zap.Int("unit", i), zap.Stringer("request", u))
		css, err := r.generate(ctx, base.Merge(u.Settings), u)
		if err != nil {
			err = fmt.Errorf("%s unit #%d (%s): %w", p.Name, i, u, err)
			if r.opts.OnError != common.FailurePolicySkip || errors.Is(err, context.Canceled) {
				return nil, err
			}
			r.log.Error("Unit failed, skipping", zap.Error(err))
			errs = multierr.Append(errs, err)
			res.Failed++
			continue
		}
		parts = append(parts, css)
		res.Succeeded++
	}

	if err := os.MkdirAll(res.OutDir, 0755); err != nil {
		return nil, multierr.Append(errs, fmt.Errorf("unable to create output directory: %w", err))
	}
	if err := os.WriteFile(res.CSSPath, []byte(strings.Join(parts, "\n")), 0644); err != nil {
		return nil, multierr.Append(errs, fmt.Errorf("unable to write stylesheet: %w", err))
	}
	r.log.Info("Stylesheet written", zap.String("path", res.CSSPath), zap.Int("units", res.Succeeded), zap.Int("failed", res.Failed))
	return res, errs
}

func (r *Runner) generate(ctx context.Context, s webfont.Settings, u Unit) (string, error) {
	var req webfont.Request
	switch u.Kind {
	case ChunkUnit:
		cr, err := webfont.NewChunkRequest(s, u.Face)
		if err != nil {
			return "", err
		}
		req = cr
	case SubsetUnit:
		sr, err := webfont.NewSubsetRequest(s, u.Face, u.Text)
		if err != nil {
			return "", err
		}
		req = sr
	default:
		return "", fmt.Errorf("unknown unit kind %d", u.Kind)
	}
	return r.d.Generate(ctx, req)
}

// removeDir removes output directory refusing to touch current directory,
// its ancestors and file system root.
func removeDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	sep := string(filepath.Separator)
	if abs == filepath.Dir(abs) || strings.HasPrefix(cwd+sep, strings.TrimSuffix(abs, sep)+sep) {
		return fmt.Errorf("refusing to empty %s: it is current directory, its parent or root", dir)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("unable to empty output directory: %w", err)
	}
	return nil
}
