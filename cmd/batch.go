package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/drainzo/internal/download"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/output"
	"gopkg.in/yaml.v3"
)

type batchFile struct {
	Output string   `yaml:"output,omitempty"`
	Links  []string `yaml:"links"`
}

func newBatchCmd() *cobra.Command {
	var (
		flat      bool
		useAria2  bool
		aria2Args string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download from multiple source URLs listed in a YAML file",
		Long: `Download from multiple source URLs listed in a YAML file.

The file holds an optional output directory and a list of links:

    output: ./downloads
    links:
      - https://pixeldrain.com/l/abc123
      - https://pixeldrain.com/u/xyz789`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Error reading YAML file: %v", err))
				os.Exit(1)
			}
			var bf batchFile
			if err := yaml.Unmarshal(data, &bf); err != nil {
				output.PrintError(fmt.Sprintf("Error parsing YAML file: %v", err))
				os.Exit(1)
			}
			if len(bf.Links) == 0 {
				output.PrintError("No links found in the batch file")
				os.Exit(1)
			}
			outputDir := bf.Output
			if outputDir == "" {
				outputDir = "./downloads"
			}

			// A link that fails extraction is reported and skipped; the
			// remaining links still download.
			var items []extract.DownloadItem
			extractFailures := 0
			for _, link := range bf.Links {
				it, err := extract.Extract(link, newClient())
				if err != nil {
					output.PrintError(fmt.Sprintf("Error: %v", err))
					extractFailures++
					continue
				}
				linkItems, err := it.Collect()
				if err != nil {
					output.PrintError(fmt.Sprintf("Error: %v", err))
					extractFailures++
					continue
				}
				items = append(items, linkItems...)
			}
			if len(items) == 0 {
				output.PrintWarning("No files to download.")
				os.Exit(1)
			}
			output.PrintSuccess(fmt.Sprintf("%s Found %d files from %d links.", output.StyleSymbols["pass"], len(items), len(bf.Links)))

			opts := download.Options{
				UseAria2:  useAria2,
				Aria2Args: aria2Args,
				Overwrite: overwrite,
			}
			summary := runBatch(items, outputDir, flat, opts)
			printSummary(summary)
			if summary.Failed() || extractFailures > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Save all files to the output dir (no collection subfolders)")
	cmd.Flags().BoolVar(&useAria2, "aria2c", false, "Use aria2c for downloads")
	cmd.Flags().StringVar(&aria2Args, "aria2c-args", "", "Additional arguments for aria2c")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files (default: resume/skip)")
	return cmd
}
