package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/retailcx/support-chatbot/pkg/logger"
	"github.com/retailcx/support-chatbot/pkg/metrics"
)

// HTTPLookup queries the backend APIs over HTTP with a bounded timeout.
type HTTPLookup struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
}

// NewHTTPLookup creates a lookup client against the given base URL.
func NewHTTPLookup(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *HTTPLookup {
	return &HTTPLookup{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// Lookup implements Lookup. A non-2xx status other than 404 and any
// transport error are returned as failures for the caller to degrade on.
func (l *HTTPLookup) Lookup(ctx context.Context, domain Domain, key string) (map[string]string, error) {
	start := time.Now()
	values, err := l.lookup(ctx, domain, key)
	status := "success"
	if err != nil {
		status = "error"
		if err == ErrNotFound {
			status = "not_found"
		}
	}
	metrics.RecordLookup(string(domain), status, time.Since(start).Seconds())
	return values, err
}

func (l *HTTPLookup) lookup(ctx context.Context, domain Domain, key string) (map[string]string, error) {
	endpoint, err := l.endpointFor(domain, key)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", domain, err)
	}
	req.Header.Set("Accept", "application/json")
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s lookup failed: %w", domain, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s lookup returned status %d", domain, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", domain, err)
	}
	return flatten(payload), nil
}

func (l *HTTPLookup) endpointFor(domain Domain, key string) (string, error) {
	switch domain {
	case DomainOrders:
		return l.baseURL + "/orders/" + url.PathEscape(key), nil
	case DomainInventory:
		return l.baseURL + "/inventory/" + url.PathEscape(key), nil
	case DomainProducts:
		return l.baseURL + "/products/" + url.PathEscape(key), nil
	case DomainStores:
		return l.baseURL + "/stores/search?location=" + url.QueryEscape(key), nil
	default:
		return "", fmt.Errorf("unknown lookup domain %q", domain)
	}
}

// flatten keeps scalar top-level fields as strings; nested structures are
// ignored since templates resolve only named scalar slots.
func flatten(payload map[string]any) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'f', 2, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}
