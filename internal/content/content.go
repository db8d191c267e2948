package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Template paths below <version>/content/erddap/ in the content repository.
const (
	SetupXML    = "setup.xml"
	DatasetsXML = "datasets.xml"
	ERDDAPCSS   = "images/erddapStart2.css"
)

// Fetcher retrieves ERDDAP template files for one version.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

type HTTPFetcher struct {
	BaseURL string
	Version string
	Client  *http.Client
}

func NewHTTPFetcher(baseURL, version string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Version: version,
		Client:  http.DefaultClient,
	}
}

// URL returns the location of path for the fetcher's version.
func (f *HTTPFetcher) URL(path string) (string, error) {
	u, err := url.JoinPath(f.BaseURL, f.Version, "content", "erddap", path)
	if err != nil {
		return "", fmt.Errorf("could not build template URL: %w", err)
	}

	return u, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, error) {
	u, err := f.URL(path)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("could not create request for %s: %w", u, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("could not fetch %s: unexpected status %s", u, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", u, err)
	}

	return string(body), nil
}
