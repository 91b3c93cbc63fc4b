// Package update checks whether a newer cdkforge release is published.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Masterminds/semver"

	"github.com/cdkforge/cdkforge/pkg/resilience"
)

// Sentinel errors for update checks.
var (
	// ErrNoRelease indicates the releases endpoint has nothing published.
	ErrNoRelease = errors.New("update: no release found")

	// ErrInvalidVersion indicates a tag or local version is not semver.
	ErrInvalidVersion = errors.New("update: invalid version")
)

// VersionInfo describes a published release.
type VersionInfo struct {
	Version string
	URL     string
	Date    time.Time
}

// Checker queries the latest published release.
type Checker interface {
	// CheckLatest fetches the latest release metadata.
	CheckLatest(ctx context.Context) (*VersionInfo, error)

	// IsUpdateAvailable reports whether the latest release is newer than
	// current. The release is returned only when it is newer.
	IsUpdateAvailable(ctx context.Context, current string) (bool, *VersionInfo, error)
}

// releaseResponse is the subset of the GitHub release payload used here.
type releaseResponse struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// checker is the concrete implementation of Checker.
type checker struct {
	apiURL string
	client *resilience.Client
	retry  *resilience.RetryOptions
	logger *slog.Logger
}

// NewChecker creates a Checker for apiURL, which must return a single
// release object (for example ".../releases/latest"). Transient failures are
// retried with retry; nil uses the client defaults.
func NewChecker(apiURL string, client *resilience.Client, retry *resilience.RetryOptions, logger *slog.Logger) Checker {
	if client == nil {
		client = resilience.NewClient()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &checker{
		apiURL: apiURL,
		client: client,
		retry:  retry,
		logger: logger,
	}
}

// CheckLatest fetches the latest release metadata.
func (c *checker) CheckLatest(ctx context.Context) (*VersionInfo, error) {
	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("User-Agent", "cdkforge-update-check")

	opts := resilience.RetryOptions{}
	if c.retry != nil {
		opts = *c.retry
	}
	userOnRetry := opts.OnRetry
	opts.OnRetry = func(err error, attempt int) {
		c.logger.Debug("retrying release check", "attempt", attempt, "error", err)
		if userOnRetry != nil {
			userOnRetry(err, attempt)
		}
	}

	resp, err := c.client.Request(ctx, c.apiURL, resilience.RequestOptions{
		Method: http.MethodGet,
		Header: header,
	}, &opts)
	if err != nil {
		return nil, fmt.Errorf("update: request %s: %w", c.apiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNoRelease, c.apiURL)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("update: %w", &resilience.StatusError{StatusCode: resp.StatusCode, Response: resp})
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("update: decode release: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("%w: empty tag", ErrNoRelease)
	}

	return &VersionInfo{
		Version: release.TagName,
		URL:     release.HTMLURL,
		Date:    release.PublishedAt,
	}, nil
}

// IsUpdateAvailable compares current against the latest release.
func (c *checker) IsUpdateAvailable(ctx context.Context, current string) (bool, *VersionInfo, error) {
	info, err := c.CheckLatest(ctx)
	if err != nil {
		return false, nil, err
	}

	newer, err := IsNewer(info.Version, current)
	if err != nil {
		return false, nil, err
	}
	if !newer {
		return false, nil, nil
	}
	return true, info, nil
}

// IsNewer reports whether latest is a higher semantic version than current.
// A leading "v" is accepted on either side.
func IsNewer(latest, current string) (bool, error) {
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("%w: latest %q: %w", ErrInvalidVersion, latest, err)
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("%w: current %q: %w", ErrInvalidVersion, current, err)
	}
	return lv.GreaterThan(cv), nil
}
