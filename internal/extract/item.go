package extract

// DownloadItem describes one downloadable file discovered during
// extraction. Extractors construct it fully; nothing mutates it afterwards.
type DownloadItem struct {
	DownloadURL    string            `json:"download_url"`
	Filename       string            `json:"filename"`
	SizeBytes      int64             `json:"size_bytes"`
	CollectionName string            `json:"collection_name,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
}
