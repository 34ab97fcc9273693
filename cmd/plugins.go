package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/output"
)

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List all supported websites and domains",
		Run: func(cmd *cobra.Command, args []string) {
			output.PrintHeader("\nSupported Platforms:\n")
			for _, domain := range extract.Domains() {
				e := extract.Lookup(domain)
				output.PrintInfo(fmt.Sprintf("  %s %-20s (%s)", output.StyleSymbols["bullet"], domain, e.Name()))
			}
			fmt.Println()
		},
	}
}
