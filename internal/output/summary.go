package output

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tanq16/drainzo/internal/utils"
)

// SummaryRow is one file's outcome for the end-of-batch table.
type SummaryRow struct {
	Name    string
	Success bool
	Size    int64
}

// PrintSummary renders the download summary table plus aggregate lines:
// completed count, total bytes of successful items, elapsed time, and the
// output directory.
func PrintSummary(rows []SummaryRow, elapsed time.Duration, outputDir string) {
	fmt.Println()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(debugStyle).
		Headers("File Name", "Status", "Size").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 1 {
				if rows[row].Success {
					return successStyle.Padding(0, 1)
				}
				return errorStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	var totalBytes uint64
	successCount := 0
	for _, row := range rows {
		status := "Failed"
		if row.Success {
			status = "Success"
			successCount++
			totalBytes += uint64(row.Size)
		}
		t.Row(row.Name, status, utils.FormatBytes(uint64(max(row.Size, 0))))
	}
	fmt.Println(t.Render())

	completed := fmt.Sprintf("%s Completed %d/%d files", StyleSymbols["pass"], successCount, len(rows))
	if successCount == len(rows) {
		PrintSuccess(completed)
	} else {
		PrintWarning(completed)
	}
	PrintDetail(fmt.Sprintf("Total downloaded: %s in %s", utils.FormatBytes(totalBytes), elapsed.Round(time.Second)))
	PrintDetail(fmt.Sprintf("Location: %s", outputDir))
	fmt.Println()
}
