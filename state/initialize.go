package state

import (
	"time"

	"fontdl/profile"
	"fontdl/webfont"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// Downloader builds download engine from loaded configuration. Received
// stylesheets go to debug report when one has been requested.
func (e *LocalEnv) Downloader() *webfont.Downloader {
	client := webfont.NewClient(webfont.ClientOptions{
		Timeout:   e.Cfg.Download.Timeout,
		TypeCheck: e.Cfg.Download.CheckType,
	}, e.Log)

	var rec webfont.Recorder
	if e.Rpt != nil {
		rec = e.Rpt
	}
	return webfont.NewDownloader(client, e.Cfg.Download.Concurrency, rec, e.Log)
}

// RunOptions combines configuration with command line overrides.
func (e *LocalEnv) RunOptions() profile.Options {
	d := e.Cfg.Defaults
	return profile.Options{
		Defaults: webfont.Settings{
			ServiceURL: d.ServiceURL,
			URLPrefix:  d.URLPrefix,
			OutDir:     d.OutDir,
			UserAgent:  d.UserAgent,
			Pattern:    d.Pattern,
			Ext:        d.Ext,
		},
		CSSFile:  d.CSSFile,
		EmptyDir: d.EmptyDir,
		Keep:     e.Keep,
		OnError:  e.Cfg.Download.OnError,
	}
}
