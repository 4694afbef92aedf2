package main

import (
	"github.com/spf13/cobra"

	"github.com/gingerrexayers/treesum-go/internal/treesum/commands"
	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
)

// NewRootCommand creates the treesum command. Without --check it writes a
// manifest for the directory; with --check it verifies a directory against
// an existing manifest.
func NewRootCommand() *cobra.Command {
	var (
		check          string
		output         string
		excludes       []string
		skipNewer      bool
		metadata       bool
		followSymlinks bool
		noIgnoreFile   bool
		verifyRoot     string
		threads        int
		verbose        bool
		configPath     string
	)
	algorithm := algorithmValue(lib.DefaultAlgorithm)

	cmd := &cobra.Command{
		Use:   "treesum [directory]",
		Short: "Generate or verify checksum manifests of a directory tree.",
		Long: `Hashes every file below a directory and prints a JSON manifest of the
digests. With --check, re-hashes a directory and compares it against a
previously written manifest, exiting with status 1 if any file is missing
or differs.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			opts := commands.RunOptions{
				Algorithm:       lib.Algorithm(algorithm),
				Output:          output,
				Excludes:        excludes,
				SkipNewer:       skipNewer,
				IncludeMetadata: metadata,
				FollowSymlinks:  followSymlinks,
				IgnoreFile:      !noIgnoreFile,
				Threads:         threads,
				Verbose:         verbose,
				Logger:          newLogger(cmd.ErrOrStderr(), verbose),
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			}

			settings, err := lib.LoadSettings(configPath, dir)
			if err != nil {
				return err
			}
			if err := applySettings(cmd.Flags(), settings, &opts); err != nil {
				return err
			}

			if check != "" {
				root := verifyRoot
				if root == "" {
					root = dir
				}
				return commands.VerifyDirectory(check, root, opts)
			}
			return commands.GenerateDirectory(dir, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&check, "check", "c", "", "Manifest file to verify against")
	flags.VarP(&algorithm, "algorithm", "a", "Hash algorithm: sha256|md5|crc32|blake2|xxh3")
	flags.StringVarP(&output, "output", "o", "", "Write the manifest to this file instead of stdout")
	flags.StringArrayVarP(&excludes, "exclude", "e", nil, "Glob pattern of paths to exclude (repeatable)")
	flags.BoolVar(&skipNewer, "skip-newer", false, "Skip files that are newer on the target than in the manifest")
	flags.BoolVarP(&metadata, "metadata", "m", false, "Record modification time and size in the manifest")
	flags.BoolVar(&followSymlinks, "follow-symlinks", false, "Follow symbolic links to files and directories")
	flags.BoolVar(&noIgnoreFile, "no-ignore-file", false, "Do not read "+lib.IgnoreFilename+" from the directory")
	flags.StringVarP(&verifyRoot, "root", "r", "", "Root directory for verification (defaults to the directory argument)")
	flags.IntVarP(&threads, "threads", "t", 0, "Number of worker threads (0 uses all CPUs)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print a status line for every file")
	flags.StringVar(&configPath, "config", "", "Settings file (defaults to "+lib.SettingsFilename+" in the directory)")

	_ = cmd.RegisterFlagCompletionFunc("algorithm", algorithmCompletions)
	_ = cmd.RegisterFlagCompletionFunc("check", manifestCompletions)

	return cmd
}
