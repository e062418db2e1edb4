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

// Resolve expects stylesheet with exactly one font file, the text hash
// becomes its label.
func (r *SubsetRequest) Resolve(sheet *css.Stylesheet) ([]Resource, error) {
	refs := sheet.URLs()
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no font url found", ErrInvalidResponse)
	}
	remote := refs[0].Value()
	for _, ref := range refs[1:] {
		if v := ref.Value(); v != remote {
			return nil, fmt.Errorf("%w: more than one font url (%q, %q)", ErrInvalidResponse, remote, v)
		}
	}

	u, err := url.Parse(remote)
	if err != nil {
		return nil, fmt.Errorf("%w: bad font url %q: %w", ErrInvalidResponse, remote, err)
	}
	version := u.Query().Get("v")
	if version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingVersion, remote)
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		ext = r.Ext
	}

	name, err := DeriveFilename(r.Pattern, Fields{
		Family:  r.Family,
		Version: version,
		Weight:  r.Weight,
		Italic:  r.Italic,
		Label:   r.Hash,
		Ext:     ext,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", remote, err)
	}
	if err := checkLocal(name); err != nil {
		return nil, err
	}
	for _, ref := range refs {
		ref.Set(r.URLPrefix + name)
	}
	return []Resource{{
		URL:      remote,
		Label:    r.Hash,
		Version:  version,
		Ext:      ext,
		Filename: name,
		Path:     filepath.Join(r.OutDir, name),
	}}, nil
}

func (r *SubsetRequest) download(ctx context.Context, d *Downloader, res []Resource) error {
	d.log.Info("Downloading subset", zap.Stringer("face", r.Face), zap.String("hash", r.Hash))
	for _, rc := range res {
		if err := d.fetch.Download(ctx, rc.URL, rc.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *SubsetRequest) userAgent() string { return r.UserAgent }
func (r *SubsetRequest) kind() string      { return "subset" }
