package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fontdl/archive"
	"fontdl/common"
	"fontdl/profile"
	"fontdl/state"
	"fontdl/webfont"
)

func runDownload(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errors.New("no profiles specified")
	}

	if name := cmd.String("on-error"); len(name) > 0 {
		policy, err := common.ParseFailurePolicy(name)
		if err != nil {
			return fmt.Errorf("unable to parse failure policy: %w", err)
		}
		env.Cfg.Download.OnError = policy
	}
	if cmd.IsSet("concurrency") {
		if err := env.Cfg.SetConcurrency(cmd.Int("concurrency")); err != nil {
			return err
		}
	}
	env.Keep = cmd.Bool("keep")
	env.Pack = cmd.Bool("pack")

	// everything is validated before first request goes out
	profiles := make([]*profile.Profile, 0, cmd.Args().Len())
	for _, path := range cmd.Args().Slice() {
		p, err := profile.Load(path)
		if err != nil {
			return err
		}
		if err := env.Rpt.StoreCopy("profiles/"+filepath.Base(path), path); err != nil {
			env.Log.Warn("Unable to store profile in debug report", zap.String("profile", path), zap.Error(err))
		}
		profiles = append(profiles, p)
	}

	runner := profile.NewRunner(env.Downloader(), env.RunOptions(), env.Log)

	var errs error
	for _, p := range profiles {
		env.Log.Info("Processing profile", zap.String("profile", p.Path), zap.Int("chunks", p.Count(profile.ChunkUnit)), zap.Int("subsets", p.Count(profile.SubsetUnit)))

		res, err := runner.Run(ctx, p)
		if err != nil {
			// whatever made it to disk helps to see what went wrong
			dir := runner.OutDir(p)
			if er := env.Rpt.StoreCopy("output/"+filepath.Base(dir), dir); er != nil && !errors.Is(er, os.ErrNotExist) {
				env.Log.Warn("Unable to store output in debug report", zap.String("dir", dir), zap.Error(er))
			}
		}
		if res == nil {
			// nothing has been written
			return multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, err)

		if env.Pack && res.Succeeded+res.Failed > 0 {
			dest := strings.TrimSuffix(res.OutDir, string(filepath.Separator)) + ".zip"
			n, err := archive.Pack(res.OutDir, dest)
			if err != nil {
				return multierr.Append(errs, fmt.Errorf("unable to pack %s: %w", res.OutDir, err))
			}
			env.Log.Info("Output packed", zap.String("archive", dest), zap.Int("files", n))
		}
	}
	env.Log.Debug("Download completed", zap.Duration("elapsed", env.Uptime()))
	return errs
}

func listProfiles(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	dir := cmd.Args().Get(0)
	if len(dir) == 0 {
		dir = env.Cfg.Profiles.Dir
	}
	paths, err := profile.Discover(dir)
	if err != nil {
		return fmt.Errorf("unable to list profiles in '%s': %w", dir, err)
	}
	if len(paths) == 0 {
		env.Log.Warn("No profiles found", zap.String("dir", dir))
		return nil
	}

	for _, path := range paths {
		p, err := profile.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "%s\tinvalid: %v\n", path, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\t%d chunk(s), %d subset(s)\n", path, p.Count(profile.ChunkUnit), p.Count(profile.SubsetUnit))
	}
	return nil
}

func showText(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("no text specified")
	}
	text := strings.Join(cmd.Args().Slice(), "")
	if err := webfont.ValidateText(text); err != nil {
		return err
	}

	canonical := webfont.Canonicalize(text)
	fmt.Fprintln(os.Stdout, canonical)
	if cmd.Bool("hash") {
		fmt.Fprintln(os.Stdout, webfont.Hash(canonical))
	}
	return nil
}
