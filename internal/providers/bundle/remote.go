package bundle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	retryable "github.com/hashicorp/go-retryablehttp"

	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/shared/types"
)

// RemoteProvider fetches bundles from a widget service over HTTP.
//
// FetchBundle is never retried automatically: a failed or timed-out
// fetch surfaces to the caller, which owns the retry policy. CheckExists
// is idempotent and uses a retrying client.
type RemoteProvider struct {
	client   *resty.Client
	existing *retryable.Client
	logger   *logging.Logger
}

// NewRemoteProvider creates an HTTP bundle provider against a base URL
func NewRemoteProvider(baseURL string, timeout time.Duration, logger *logging.Logger) *RemoteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)

	existing := retryable.NewClient()
	existing.RetryMax = 2
	existing.HTTPClient.Timeout = timeout
	existing.Logger = nil

	return &RemoteProvider{
		client:   client,
		existing: existing,
		logger:   logger.Named("bundle.remote"),
	}
}

// FetchBundle downloads every artifact of a widget's bundle
func (p *RemoteProvider) FetchBundle(ctx context.Context, widget string) ([]types.SourceArtifact, error) {
	var artifacts []types.SourceArtifact

	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&artifacts).
		SetPathParam("widget", widget).
		Get("/widgets/{widget}/bundle")
	if err != nil {
		return nil, fmt.Errorf("fetch bundle %q: %w", widget, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrWidgetNotFound, widget)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch bundle %q: status %d", widget, resp.StatusCode())
	}
	return artifacts, nil
}

// CheckExists asks the widget service what a bundle contains
func (p *RemoteProvider) CheckExists(ctx context.Context, widget string) (*types.Existence, error) {
	url := fmt.Sprintf("%s/widgets/%s/exists", p.client.BaseURL, widget)
	req, err := retryable.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.existing.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check widget %q: %w", widget, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &types.Existence{Exists: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check widget %q: status %d", widget, resp.StatusCode)
	}

	var out types.Existence
	if err := decodeJSON(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("check widget %q: %w", widget, err)
	}
	return &out, nil
}
