package download

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/utils"
)

// httpDownload is the built-in streaming engine. It requests a byte range
// when resuming and appends; if the server declines the range with a
// non-206 status the file is truncated and rewritten from zero instead of
// appending onto a mismatched base.
func (d *Downloader) httpDownload(item extract.DownloadItem, destination string, resumeOffset int64, sink ProgressSink) error {
	req, err := http.NewRequest("GET", item.DownloadURL, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %w", err)
	}
	for key, value := range item.Headers {
		req.Header.Set(key, value)
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
		log.Debug().Str("op", "download/builtin").Msgf("Resuming from offset %d", resumeOffset)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()

	if resumeOffset > 0 && resp.StatusCode != http.StatusPartialContent {
		log.Warn().Str("op", "download/builtin").Msgf("Server declined resume (status %d), restarting", resp.StatusCode)
		d.notify(fmt.Sprintf("Server does not support resumption, restarting %s", item.Filename))
		resumeOffset = 0
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	fileMode := os.O_CREATE | os.O_WRONLY
	if resumeOffset > 0 {
		fileMode |= os.O_APPEND
	} else {
		fileMode |= os.O_TRUNC
	}
	outFile, err := os.OpenFile(destination, fileMode, 0644)
	if err != nil {
		return fmt.Errorf("error opening output file: %w", err)
	}
	defer outFile.Close()

	totalSize := item.SizeBytes
	if resp.ContentLength > 0 {
		totalSize = resp.ContentLength + resumeOffset
	}
	sink.Report(resumeOffset, totalSize)

	written := resumeOffset
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return fmt.Errorf("error writing to output file: %w", writeErr)
			}
			written += int64(bytesRead)
			sink.Report(written, totalSize)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	if err := outFile.Sync(); err != nil {
		return fmt.Errorf("error syncing output file: %w", err)
	}
	return nil
}
