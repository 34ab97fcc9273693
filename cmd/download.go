package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/drainzo/internal/batch"
	"github.com/tanq16/drainzo/internal/download"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/output"
)

func newDownloadCmd() *cobra.Command {
	var (
		flat        bool
		pattern     string
		useAria2    bool
		aria2Native bool
		aria2Args   string
		overwrite   bool
	)

	cmd := &cobra.Command{
		Use:   "download [URL] [OUTPUT_DIR]",
		Short: "Download content from URL to OUTPUT_DIR",
		Long: `Download content from URL to OUTPUT_DIR (default ./downloads).

By default, files are organized into subfolders by collection.
Use --flat to disable this behavior.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			url := args[0]
			outputDir := "./downloads"
			if len(args) > 1 {
				outputDir = args[1]
			}

			printExtractorName(url)
			items := collectItems(url)
			if pattern != "" {
				filtered := batch.Filter(items, pattern)
				output.PrintDetail(fmt.Sprintf("Filtered: %d %s %d files", len(items), output.StyleSymbols["arrow"], len(filtered)))
				items = filtered
			}
			if len(items) == 0 {
				output.PrintWarning("No files to download.")
				return
			}
			output.PrintSuccess(fmt.Sprintf("%s Found %d files.", output.StyleSymbols["pass"], len(items)))

			opts := download.Options{
				UseAria2:    useAria2,
				Aria2Native: aria2Native,
				Aria2Args:   aria2Args,
				Overwrite:   overwrite,
			}
			summary := runBatch(items, outputDir, flat, opts)
			printSummary(summary)
			if summary.Failed() {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Save all files to OUTPUT_DIR (no collection subfolders)")
	cmd.Flags().StringVar(&pattern, "filter", "", "Filter files by glob pattern (e.g., *.jpg, *.mp4)")
	cmd.Flags().BoolVar(&useAria2, "aria2c", false, "Use aria2c for downloads")
	cmd.Flags().BoolVar(&aria2Native, "aria2c-native", false, "Use native aria2c interface (shows detailed output)")
	cmd.Flags().StringVar(&aria2Args, "aria2c-args", "", "Additional arguments for aria2c")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files (default: resume/skip)")
	return cmd
}

// runBatch wires the display, orchestrator, and controller together and
// downloads all items sequentially.
func runBatch(items []extract.DownloadItem, outputDir string, flat bool, opts download.Options) *batch.Summary {
	display := output.NewManager()
	display.StartDisplay()
	defer display.StopDisplay()

	d := download.New(newClient())
	d.Notify = display.Notify
	d.Pause = display.Pause
	d.Resume = display.Resume

	controller := &batch.Controller{
		Downloader: d,
		BaseDir:    outputDir,
		Flat:       flat,
		Options:    opts,
		Display:    display,
	}
	return controller.Run(items)
}

func printSummary(summary *batch.Summary) {
	rows := make([]output.SummaryRow, 0, len(summary.Results))
	for _, r := range summary.Results {
		rows = append(rows, output.SummaryRow{Name: r.Filename, Success: r.Success, Size: r.Size})
	}
	output.PrintSummary(rows, summary.Elapsed, summary.OutputDir)
}
