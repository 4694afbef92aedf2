package main

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the 'completion' command, which prints a shell
// completion script for treesum to stdout.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `Prints a completion script for the given shell.

Bash:
  $ source <(treesum completion bash)

Zsh:
  $ treesum completion zsh > "${fpath[1]}/_treesum"

Fish:
  $ treesum completion fish > ~/.config/fish/completions/treesum.fish

Powershell:
  PS> treesum completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
