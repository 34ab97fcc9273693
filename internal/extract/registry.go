package extract

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/drainzo/internal/utils"
)

// Extractor resolves one source URL into downloadable items. The returned
// iterator must not perform network calls until its first Next.
type Extractor interface {
	Name() string
	Extract(rawURL string, client *utils.DrainzoHTTPClient) *Iterator
}

var registry = map[string]Extractor{}

// Register adds an extractor for a domain. Extractor packages call this
// from init; importers pull them in with a blank import.
func Register(domain string, e Extractor) {
	registry[strings.ToLower(domain)] = e
}

// Lookup resolves a domain to its extractor: exact match first, then any
// registered domain contained in the host (covers subdomains and ports).
func Lookup(domain string) Extractor {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if e, ok := registry[domain]; ok {
		return e
	}
	for registered, e := range registry {
		if strings.Contains(domain, registered) {
			return e
		}
	}
	return nil
}

// Domains returns the registered domains in sorted order.
func Domains() []string {
	domains := make([]string, 0, len(registry))
	for d := range registry {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// ExtractorFor resolves a raw URL to its extractor without touching the
// network. Returns an UnsupportedDomainError when no extractor matches.
func ExtractorFor(rawURL string) (Extractor, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("URL cannot be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: could not parse domain from %q", rawURL)
	}
	e := Lookup(parsed.Host)
	if e == nil {
		return nil, &UnsupportedDomainError{Domain: parsed.Host}
	}
	return e, nil
}

// Extract resolves a URL to a lazy sequence of items. Validation and
// domain resolution happen immediately; metadata requests happen during
// iteration. Fetch failures other than the distinguished error kinds are
// wrapped in an ExtractionError.
func Extract(rawURL string, client *utils.DrainzoHTTPClient) (*Iterator, error) {
	e, err := ExtractorFor(rawURL)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("op", "extract/registry").Msgf("Using %s extractor for %s", e.Name(), rawURL)
	inner := e.Extract(strings.TrimSpace(rawURL), client)
	return NewIterator(func() ([]DownloadItem, error) {
		items, err := inner.Collect()
		if err != nil {
			var ee *ExtractionError
			if errors.As(err, &ee) || IsUnsupportedDomain(err) {
				return nil, err
			}
			return nil, &ExtractionError{URL: rawURL, Err: err}
		}
		return items, nil
	}), nil
}
