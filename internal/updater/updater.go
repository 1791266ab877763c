// Package updater checks GitHub for a newer intent-mcp release.
//
// The check is best-effort: serve runs it in the background and only
// prints a notice to stderr when a newer release exists.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultRepo is the GitHub owner/name whose releases are checked.
	DefaultRepo = "HendryAvila/intent-mcp"

	checkTimeout = 10 * time.Second
)

// Overridable in tests.
var (
	githubAPI  = "https://api.github.com"
	httpClient = &http.Client{Timeout: checkTimeout}
)

// ReleaseInfo holds the fields used from a GitHub release.
type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// UpdateResult is the outcome of CheckVersion.
type UpdateResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Notice returns the line printed when an update is available, or "".
func (r *UpdateResult) Notice() string {
	if r == nil || !r.UpdateAvailable {
		return ""
	}
	return fmt.Sprintf("intent-mcp %s is available (running %s): %s",
		r.LatestVersion, r.CurrentVersion, r.ReleaseURL)
}

// CheckVersion asks GitHub for the latest release of repo and compares it
// with currentVersion. Unversioned builds such as "dev" return without a
// request. The result is always non-nil; err reports why the latest
// version could not be determined.
func CheckVersion(ctx context.Context, repo, currentVersion string) (*UpdateResult, error) {
	result := &UpdateResult{CurrentVersion: normalizeVersion(currentVersion)}
	if !Releasable(currentVersion) {
		return result, nil
	}
	if repo == "" {
		repo = DefaultRepo
	}

	endpoint := githubAPI + "/repos/" + repo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return result, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "intent-mcp/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return result, fmt.Errorf("parsing release info: %w", err)
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result, nil
}

// Releasable reports whether v is a semantic version that can be compared
// against published releases.
func Releasable(v string) bool {
	return semver.IsValid("v" + normalizeVersion(v))
}

// normalizeVersion strips a leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewer reports whether latest is a higher semantic version than
// current. Build metadata is ignored; unparsable versions never compare
// as newer.
func isNewer(current, latest string) bool {
	c, l := "v"+current, "v"+latest
	if !semver.IsValid(c) || !semver.IsValid(l) {
		return false
	}
	return semver.Compare(l, c) > 0
}
