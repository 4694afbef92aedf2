package main

import (
	"github.com/spf13/pflag"

	"github.com/gingerrexayers/treesum-go/internal/treesum/commands"
	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
)

// algorithmValue is a pflag.Value that only accepts supported algorithm names.
type algorithmValue lib.Algorithm

var _ pflag.Value = (*algorithmValue)(nil)

func (a *algorithmValue) String() string { return string(*a) }

func (a *algorithmValue) Set(name string) error {
	alg, err := lib.ParseAlgorithm(name)
	if err != nil {
		return err
	}
	*a = algorithmValue(alg)
	return nil
}

func (a *algorithmValue) Type() string { return "algorithm" }

// applySettings fills in opts from a settings file for every option whose
// flag was not given explicitly. Exclude patterns from the file are added to
// those from the command line.
func applySettings(flags *pflag.FlagSet, s *lib.Settings, opts *commands.RunOptions) error {
	if s == nil {
		return nil
	}
	if s.Algorithm != "" && !flags.Changed("algorithm") {
		alg, err := lib.ParseAlgorithm(s.Algorithm)
		if err != nil {
			return err
		}
		opts.Algorithm = alg
	}
	if s.Threads != nil && !flags.Changed("threads") {
		opts.Threads = *s.Threads
	}
	if s.FollowSymlinks != nil && !flags.Changed("follow-symlinks") {
		opts.FollowSymlinks = *s.FollowSymlinks
	}
	if s.Metadata != nil && !flags.Changed("metadata") {
		opts.IncludeMetadata = *s.Metadata
	}
	if s.SkipNewer != nil && !flags.Changed("skip-newer") {
		opts.SkipNewer = *s.SkipNewer
	}
	if s.IgnoreFile != nil && !flags.Changed("no-ignore-file") {
		opts.IgnoreFile = *s.IgnoreFile
	}
	if len(s.Exclude) > 0 {
		opts.Excludes = append(append([]string{}, s.Exclude...), opts.Excludes...)
	}
	return nil
}
