package download

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/utils"
)

// SidecarSuffix is aria2c's own in-progress marker. Its presence means
// aria2c owns the partial state of that destination; the built-in engine
// only ever checks for its existence.
const SidecarSuffix = ".aria2"

const terminateGrace = 2 * time.Second

// Matches aria2c summary lines such as:
//
//	[#cf9351 19MiB/1.3GiB(1%) CN:8 DL:0.9MiB ETA:22m24s]
//
// Groups: current value/unit, total value/unit, percent, speed value/unit,
// optional ETA.
var summaryPattern = regexp.MustCompile(`\[#\w+\s+([\d.]+)(\w+)/([\d.]+)(\w+)\((\d+)%\).*?DL:([\d.]+)(\w+)(?:\s+ETA:([\w\d]+))?\]`)

var sizeUnits = map[string]int64{
	"B":   1,
	"KiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
	"K":   1 << 10,
	"M":   1 << 20,
	"G":   1 << 30,
}

type progressUpdate struct {
	Completed  int64
	Total      int64
	Percent    int
	SpeedBytes int64
	ETA        string
}

// SidecarExists reports whether aria2c left its marker next to the
// destination, meaning an externally managed incomplete transfer.
func SidecarExists(destination string) bool {
	_, err := os.Stat(destination + SidecarSuffix)
	return err == nil
}

// parseSize converts aria2c size strings (e.g. 1.3, GiB) to bytes. Unknown
// units fall back to a multiplier of 1.
func parseSize(value, unit string) int64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, unit)
	mult, ok := sizeUnits[clean]
	if !ok {
		mult = 1
	}
	return int64(f * float64(mult))
}

// parseSummaryLine extracts a progress update from one line of aria2c
// output. Lines without the bracketed summary produce no update.
func parseSummaryLine(line string) (progressUpdate, bool) {
	match := summaryPattern.FindStringSubmatch(line)
	if match == nil {
		return progressUpdate{}, false
	}
	percent, _ := strconv.Atoi(match[5])
	return progressUpdate{
		Completed:  parseSize(match[1], match[2]),
		Total:      parseSize(match[3], match[4]),
		Percent:    percent,
		SpeedBytes: parseSize(match[6], match[7]),
		ETA:        match[8],
	}, true
}

// buildAria2Args assembles the aria2c invocation: deterministic output
// placement, resume enabled, and either caller-supplied raw args or the
// default of 8 connections / 8 segments with a 1MiB minimum split.
func buildAria2Args(item extract.DownloadItem, destination string, extraArgs string, quiet bool) ([]string, error) {
	args := []string{
		item.DownloadURL,
		"-o", filepath.Base(destination),
		"-d", filepath.Dir(destination),
		"--file-allocation=none",
		"--auto-file-renaming=false",
		"--allow-overwrite=true",
		"--continue=true",
	}
	if quiet {
		// Notice level plus a 1s summary interval gives parseable output
		args = append(args, "--console-log-level=notice", "--summary-interval=1")
	}
	if strings.TrimSpace(extraArgs) != "" {
		split, err := utils.SplitArgs(extraArgs)
		if err != nil {
			return nil, fmt.Errorf("invalid aria2c args: %w", err)
		}
		args = append(args, split...)
	} else {
		args = append(args, "-x", "8", "-s", "8", "--min-split-size=1M")
	}
	for key, value := range item.Headers {
		args = append(args, fmt.Sprintf("--header=%s: %s", key, value))
	}
	return args, nil
}

// runAria2 invokes aria2c in parsed mode, scanning its merged output for
// summary lines and feeding the sink. The exit code is the authoritative
// success signal.
func (d *Downloader) runAria2(item extract.DownloadItem, destination string, opts Options, sink ProgressSink) error {
	args, err := buildAria2Args(item, destination, opts.Aria2Args, true)
	if err != nil {
		return err
	}
	cmd := exec.Command(d.Aria2Path, args...)
	log.Debug().Str("op", "download/aria2").Msgf("Executing: %s", cmd.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting %s: %w", d.Aria2Path, err)
	}

	scanner := bufio.NewScanner(io.MultiReader(stdout, stderr))
	for scanner.Scan() {
		upd, ok := parseSummaryLine(scanner.Text())
		if !ok {
			continue
		}
		total := upd.Total
		if total <= 0 {
			total = item.SizeBytes
		}
		sink.Report(upd.Completed, total)
		if upd.SpeedBytes > 0 {
			desc := fmt.Sprintf("DL %s/s", utils.FormatBytes(uint64(upd.SpeedBytes)))
			if upd.ETA != "" {
				desc += " ETA " + upd.ETA
			}
			sink.SetDescription(desc)
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		// The stream broke under us; let the process wind down before
		// killing it, and report failure rather than raising.
		terminate(cmd)
		return fmt.Errorf("error reading aria2c output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("aria2c failed: %w", err)
	}
	return nil
}

// runAria2Native runs aria2c with inherited console I/O. The caller is
// expected to have paused any progress display first. Success is judged by
// the destination existing afterwards, not by the exit code.
func (d *Downloader) runAria2Native(item extract.DownloadItem, destination string, opts Options) error {
	args, err := buildAria2Args(item, destination, opts.Aria2Args, false)
	if err != nil {
		return err
	}
	cmd := exec.Command(d.Aria2Path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Debug().Str("op", "download/aria2").Msgf("Executing (native): %s", cmd.String())
	if err := cmd.Run(); err != nil {
		log.Debug().Str("op", "download/aria2").Err(err).Msg("aria2c native run returned error")
	}
	if _, err := os.Stat(destination); err != nil {
		return fmt.Errorf("aria2c did not produce %s", destination)
	}
	return nil
}

// terminate gives the process a bounded window to exit on its own, then
// kills it. Reaps the process either way.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)
	killTimer := time.AfterFunc(terminateGrace, func() {
		_ = cmd.Process.Kill()
	})
	_ = cmd.Wait()
	killTimer.Stop()
}
