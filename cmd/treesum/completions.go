package main

import (
	"github.com/spf13/cobra"

	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
)

var algorithmDescriptions = map[lib.Algorithm]string{
	lib.SHA256: "SHA-256, 64 hex chars",
	lib.MD5:    "MD5, 32 hex chars",
	lib.CRC32:  "CRC32 (IEEE), 8 hex chars",
	lib.Blake2: "BLAKE2s-256, 64 hex chars",
	lib.XXH3:   "XXH3 64-bit, 16 hex chars",
}

// algorithmCompletions suggests the supported algorithm names for --algorithm.
func algorithmCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	suggestions := make([]string, 0, len(lib.Algorithms))
	for _, alg := range lib.Algorithms {
		suggestions = append(suggestions, string(alg)+"\t"+algorithmDescriptions[alg])
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// manifestCompletions limits --check completion to JSON files.
func manifestCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
