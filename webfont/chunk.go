package webfont

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"fontdl/css"
)

// chunkLabel turns "[12]" into "12", only first pair of brackets is removed.
func chunkLabel(comment string) string {
	s := strings.TrimSpace(comment)
	s = strings.Replace(s, "[", "", 1)
	s = strings.Replace(s, "]", "", 1)
	return strings.TrimSpace(s)
}

// chunkMetadata extracts version (directory holding the file) and extension
// from gstatic url, e.g. .../s/notosansjp/v52/xxx.0.woff2.
func chunkMetadata(raw string) (version, ext string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad font url %q: %w", ErrInvalidResponse, raw, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 2 {
		version = segments[len(segments)-2]
	}
	return version, strings.TrimPrefix(path.Ext(u.Path), "."), nil
}

// Resolve pairs top-level comments with top-level at-rules by index. Comment
// is the chunk label, every url() of the at-rule is a chunk file.
func (r *ChunkRequest) Resolve(sheet *css.Stylesheet) ([]Resource, error) {
	labels := sheet.Comments()
	rules := sheet.AtRules()

	var (
		res  []Resource
		seen = make(map[string]string)
	)
	for i, rule := range rules {
		refs := rule.URLs()
		if len(refs) == 0 {
			continue
		}
		var label string
		if i < len(labels) {
			label = chunkLabel(labels[i].Text)
		}
		if label == "" {
			return nil, fmt.Errorf("%w: no label for %s rule #%d", ErrMissingMetadata, rule.Name, i)
		}
		for _, ref := range refs {
			remote := ref.Value()
			version, ext, err := chunkMetadata(remote)
			if err != nil {
				return nil, err
			}
			if ext == "" {
				ext = r.Ext
			}
			name, err := DeriveFilename(r.Pattern, Fields{
				Family:  r.Family,
				Version: version,
				Weight:  r.Weight,
				Italic:  r.Italic,
				Label:   label,
				Ext:     ext,
			})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", remote, err)
			}
			if err := checkLocal(name); err != nil {
				return nil, err
			}
			if prev, ok := seen[name]; ok && prev != remote {
				return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrInvalidResponse, prev, remote, name)
			}
			seen[name] = remote
			ref.Set(r.URLPrefix + name)
			res = append(res, Resource{
				URL:      remote,
				Label:    label,
				Version:  version,
				Ext:      ext,
				Filename: name,
				Path:     filepath.Join(r.OutDir, name),
			})
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: no font resources found", ErrInvalidResponse)
	}
	return res, nil
}

// checkLocal rejects file names which would end up outside of output
// directory, labels come from the response and are not trusted.
func checkLocal(name string) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: file name %q points outside of output directory", ErrInvalidResponse, name)
	}
	return nil
}

func (r *ChunkRequest) download(ctx context.Context, d *Downloader, res []Resource) error {
	d.log.Info("Downloading chunks", zap.Stringer("face", r.Face), zap.Int("count", len(res)))

	s := NewScheduler(ctx, d.concurrency)
	done := make(map[string]bool, len(res))
	for _, rc := range res {
		// same url may appear in more than one rule
		if done[rc.Path] {
			continue
		}
		done[rc.Path] = true
		s.Submit(func(ctx context.Context) error {
			return d.fetch.Download(ctx, rc.URL, rc.Path)
		})
	}
	return s.Wait()
}

func (r *ChunkRequest) userAgent() string { return r.UserAgent }
func (r *ChunkRequest) kind() string      { return "chunk" }
