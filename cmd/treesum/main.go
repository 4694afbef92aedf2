package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gingerrexayers/treesum-go/internal/treesum/commands"
)

func main() {
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewCompletionCommand())

	if err := rootCmd.Execute(); err != nil {
		// The verification summary has already been printed.
		if !errors.Is(err, commands.ErrVerificationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
