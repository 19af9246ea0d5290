// Package updater checks GitHub Releases for a newer launchpad build.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultReleasesURL is the latest-release endpoint for launchpad.
const DefaultReleasesURL = "https://api.github.com/repos/watchfire-io/launchpad/releases/latest"

// Release is the subset of a GitHub release the check needs.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result describes an update check.
type Result struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
}

// Checker queries a releases endpoint.
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a Checker for DefaultReleasesURL.
func NewChecker() *Checker {
	return &Checker{
		URL:    DefaultReleasesURL,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Check compares current against the latest published release. A current
// version that is not semver ("dev") is always considered out of date.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "launchpad/"+current)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	result := &Result{CurrentVersion: current}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Nothing published yet.
		return result, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("releases endpoint returned %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}

	result.LatestVersion = strings.TrimPrefix(release.TagName, "v")
	result.ReleaseURL = release.HTMLURL

	latest, err := ParseSemver(result.LatestVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest version %q: %w", result.LatestVersion, err)
	}

	cur, err := ParseSemver(current)
	if err != nil {
		result.Available = true
		return result, nil
	}
	result.Available = cur.LessThan(latest)
	return result, nil
}
