// Package batch walks extracted items in order, resolves destination
// paths, runs the download orchestrator per item, and aggregates results.
// Items are strictly sequential; a failed item never aborts the batch.
package batch

import (
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/drainzo/internal/download"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/output"
	"github.com/tanq16/drainzo/internal/utils"
)

type Result struct {
	Filename string
	Success  bool
	Size     int64
	Err      error
}

type Summary struct {
	Results   []Result
	Elapsed   time.Duration
	OutputDir string
}

func (s *Summary) SuccessCount() int {
	count := 0
	for _, r := range s.Results {
		if r.Success {
			count++
		}
	}
	return count
}

func (s *Summary) Failed() bool {
	return s.SuccessCount() < len(s.Results)
}

// Controller drives one batch. Display may be nil (no live rendering).
type Controller struct {
	Downloader *download.Downloader
	BaseDir    string
	Flat       bool
	Options    download.Options
	Display    *output.Manager
}

// Destination resolves where an item lands on disk: base dir, then the
// sanitized collection name unless flat, then the sanitized filename.
func (c *Controller) Destination(item extract.DownloadItem) string {
	dir := c.BaseDir
	if !c.Flat && item.CollectionName != "" {
		dir = filepath.Join(c.BaseDir, utils.SanitizeFilename(item.CollectionName))
	}
	return filepath.Join(dir, utils.SanitizeFilename(item.Filename))
}

// Run downloads every item in order and returns the aggregate summary.
func (c *Controller) Run(items []extract.DownloadItem) *Summary {
	start := time.Now()
	outputDir := c.BaseDir
	if abs, err := filepath.Abs(c.BaseDir); err == nil {
		outputDir = abs
	}
	summary := &Summary{OutputDir: outputDir}

	if c.Display != nil && len(items) > 1 {
		c.Display.SetBatchTotal(len(items))
	}

	for _, item := range items {
		dest := c.Destination(item)
		jobID := uuid.NewString()[:8]
		log.Debug().Str("op", "batch").Str("job", jobID).Msgf("Downloading %s to %s", item.Filename, dest)

		var sink download.ProgressSink
		if c.Display != nil {
			sink = c.Display.StartTask(item.Filename, item.SizeBytes)
		}
		err := c.Downloader.Download(item, dest, c.Options, sink)
		if err != nil {
			log.Error().Str("op", "batch").Str("job", jobID).Err(err).Msgf("Download failed for %s", item.Filename)
		}
		if c.Display != nil {
			if err != nil {
				c.Display.FinishTask(false, "Failed "+item.Filename)
			} else {
				c.Display.FinishTask(true, "Completed "+item.Filename)
			}
			c.Display.AdvanceBatch()
		}
		summary.Results = append(summary.Results, Result{
			Filename: item.Filename,
			Success:  err == nil,
			Size:     sizeOnDisk(dest),
			Err:      err,
		})
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// Filter keeps items whose filename matches the glob pattern. An invalid
// pattern matches nothing.
func Filter(items []extract.DownloadItem, pattern string) []extract.DownloadItem {
	if pattern == "" {
		return items
	}
	var kept []extract.DownloadItem
	for _, item := range items {
		if ok, err := path.Match(pattern, item.Filename); err == nil && ok {
			kept = append(kept, item)
		}
	}
	return kept
}

// sizeOnDisk reports the destination's current size, zero when absent;
// failed attempts record whatever partial bytes landed.
func sizeOnDisk(destination string) int64 {
	if stat, err := os.Stat(destination); err == nil {
		return stat.Size()
	}
	return 0
}
