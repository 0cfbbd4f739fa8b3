// Package version reports the build version and checks for newer
// releases.
package version

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Version is overridden at build time with -ldflags "-X ...".
var Version = "0.1.0"

// ReleasesURL is the endpoint describing the latest release.
var ReleasesURL = "https://api.github.com/repos/HFT/cream-browser/releases/latest"

const checkTimeout = 5 * time.Second

// Banner is the one-line identification printed by --version.
func Banner() string {
	return fmt.Sprintf("cream-browser %s (%s %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is the default User-Agent header of outgoing requests.
func UserAgent() string {
	return "cream-browser/" + Version
}

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the result of CheckForUpdate.
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// CheckForUpdate asks the release endpoint whether a version newer than
// current exists.
func CheckForUpdate(ctx context.Context, current string) (*Update, error) {
	var rel release
	resp, err := resty.New().
		SetTimeout(checkTimeout).
		R().
		SetContext(ctx).
		SetHeader("User-Agent", "cream-browser/"+current).
		SetResult(&rel).
		Get(ReleasesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	current = strings.TrimPrefix(current, "v")
	return &Update{
		Available: latest != "" && isNewerVersion(latest, current),
		Latest:    latest,
		URL:       rel.HTMLURL,
	}, nil
}

// isNewerVersion compares two semantic versions and returns true if latest > current
// Supports versions like "0.0.28", "1.2.3", "0.0.29-dev", etc.
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	maxLen := max(len(latestParts), len(currentParts))
	for len(latestParts) < maxLen {
		latestParts = append(latestParts, 0)
	}
	for len(currentParts) < maxLen {
		currentParts = append(currentParts, 0)
	}

	for i := 0; i < maxLen; i++ {
		if latestParts[i] != currentParts[i] {
			return latestParts[i] > currentParts[i]
		}
	}
	return false
}

// parseVersion parses a version string into integer parts, ignoring
// pre-release and build metadata.
func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
