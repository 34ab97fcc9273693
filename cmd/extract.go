package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/output"
	"github.com/tanq16/drainzo/internal/utils"
)

type extractReport struct {
	Source string                 `json:"source"`
	Count  int                    `json:"count"`
	Items  []extract.DownloadItem `json:"items"`
}

func newExtractCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "extract [URL]",
		Short: "Extract metadata from URL without downloading (dry run)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			url := args[0]
			if !outputJSON {
				printExtractorName(url)
			}
			items := collectItems(url)
			if outputJSON {
				report := extractReport{Source: url, Count: len(items), Items: items}
				encoded, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					output.PrintError(fmt.Sprintf("Error encoding JSON: %v", err))
					os.Exit(1)
				}
				fmt.Println(string(encoded))
				return
			}
			printItems(items)
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output JSON instead of human-readable text")
	return cmd
}

// collectItems runs extraction for one URL and exits non-zero on any
// extraction-phase error; nothing was downloaded yet, so the whole
// invocation is fatal.
func collectItems(url string) []extract.DownloadItem {
	it, err := extract.Extract(url, newClient())
	if err != nil {
		output.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
	items, err := it.Collect()
	if err != nil {
		output.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
	return items
}

func printExtractorName(url string) {
	if e, err := extract.ExtractorFor(url); err == nil {
		output.PrintSuccess(fmt.Sprintf("%s Using plugin: %s", output.StyleSymbols["pass"], e.Name()))
	}
}

func printItems(items []extract.DownloadItem) {
	output.PrintHeader(fmt.Sprintf("\nFound %d files:\n", len(items)))
	for i, item := range items {
		output.PrintInfo(fmt.Sprintf("  %02d. %s", i+1, item.Filename))
		if item.CollectionName != "" {
			output.PrintDetail(fmt.Sprintf("      Collection: %s", item.CollectionName))
		}
		if item.SizeBytes > 0 {
			output.PrintDetail(fmt.Sprintf("      Size: %s", utils.FormatBytes(uint64(item.SizeBytes))))
		}
	}
}
