// Package pixeldrain extracts download metadata from pixeldrain.com file
// and list URLs via its JSON API.
package pixeldrain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/utils"
)

const defaultAPIBase = "https://pixeldrain.com/api"

func init() {
	extract.Register("pixeldrain.com", &PixelDrain{})
}

// PixelDrain handles two URL shapes: /u/<id> single files and /l/<id>
// lists. Anything else on the domain is a hard failure.
type PixelDrain struct {
	// APIBase overrides the production API endpoint, for tests.
	APIBase string
}

func (p *PixelDrain) Name() string {
	return "PixelDrain"
}

func (p *PixelDrain) Extract(rawURL string, client *utils.DrainzoHTTPClient) *extract.Iterator {
	return extract.NewIterator(func() ([]extract.DownloadItem, error) {
		switch {
		case strings.Contains(rawURL, "/u/"):
			return p.extractFile(rawURL, client)
		case strings.Contains(rawURL, "/l/"):
			return p.extractList(rawURL, client)
		default:
			return nil, &extract.ExtractionError{
				URL: rawURL,
				Err: fmt.Errorf("unsupported pixeldrain URL format"),
			}
		}
	})
}

func (p *PixelDrain) apiBase() string {
	if p.APIBase != "" {
		return p.APIBase
	}
	return defaultAPIBase
}

func (p *PixelDrain) downloadURL(fileID string) string {
	return fmt.Sprintf("%s/file/%s?download", p.apiBase(), fileID)
}

type fileInfoResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Message string `json:"message"`
}

type listResponse struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Files   []struct {
		DetailID string `json:"detail_id"`
		Name     string `json:"name"`
		Size     int64  `json:"size"`
	} `json:"files"`
}

func (p *PixelDrain) extractFile(rawURL string, client *utils.DrainzoHTTPClient) ([]extract.DownloadItem, error) {
	fileID := lastSegment(rawURL)
	apiURL := fmt.Sprintf("%s/file/%s/info", p.apiBase(), fileID)

	var info fileInfoResponse
	if err := getJSON(client, apiURL, &info); err != nil {
		return nil, err
	}
	if !info.Success {
		return nil, fmt.Errorf("failed to get file info: %s", info.Message)
	}
	name := info.Name
	if name == "" {
		name = "unknown"
	}
	log.Debug().Str("op", "extract/pixeldrain").Msgf("Resolved file %s (%s)", fileID, name)
	return []extract.DownloadItem{{
		DownloadURL: p.downloadURL(fileID),
		Filename:    name,
		SizeBytes:   info.Size,
	}}, nil
}

func (p *PixelDrain) extractList(rawURL string, client *utils.DrainzoHTTPClient) ([]extract.DownloadItem, error) {
	listID := lastSegment(rawURL)
	apiURL := fmt.Sprintf("%s/list/%s", p.apiBase(), listID)

	var list listResponse
	if err := getJSON(client, apiURL, &list); err != nil {
		return nil, err
	}
	if !list.Success {
		return nil, fmt.Errorf("failed to get list info: %s", list.Message)
	}
	collection := list.Title
	if collection == "" {
		collection = "pixeldrain_list"
	}
	log.Debug().Str("op", "extract/pixeldrain").Msgf("Resolved list %s with %d files", listID, len(list.Files))
	items := make([]extract.DownloadItem, 0, len(list.Files))
	for _, entry := range list.Files {
		name := entry.Name
		if name == "" {
			name = "unknown"
		}
		items = append(items, extract.DownloadItem{
			DownloadURL:    p.downloadURL(entry.DetailID),
			Filename:       name,
			SizeBytes:      entry.Size,
			CollectionName: collection,
		})
	}
	return items, nil
}

func getJSON(client *utils.DrainzoHTTPClient, apiURL string, out any) error {
	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding API response: %w", err)
	}
	return nil
}

func lastSegment(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}
