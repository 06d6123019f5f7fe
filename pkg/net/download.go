package net

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrURLNotFound indicates the dataset URL returned a 404.
var ErrURLNotFound = errors.New("URL not found")

// Fetch retrieves the content at url into memory. The datasets this tool
// consumes are tiny (tens of studies), so no streaming is needed.
func Fetch(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	resp, err := GetHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrURLNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading downloaded content: %w", err)
	}
	return b, nil
}
