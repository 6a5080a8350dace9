package browse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const collectionsPath = "/api/v1/collections/"

// HTTPCollection fetches collection pages from the storefront API.
type HTTPCollection struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCollection targets baseURL, e.g. http://localhost:8080.
func NewHTTPCollection(baseURL string, timeout time.Duration) (*HTTPCollection, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("browse base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse browse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCollection{baseURL: baseURL, client: &http.Client{Timeout: timeout}}, nil
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("collections api: status %d", e.Status)
	}
	return fmt.Sprintf("collections api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

func (h *HTTPCollection) Fetch(ctx context.Context, q Query) (Page, error) {
	endpoint := h.baseURL + collectionsPath + url.PathEscape(q.Slug.String())
	params := url.Values{}
	if !q.Sort.IsZero() {
		params.Set("sort", q.Sort.Key)
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build collections request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("collections request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Page{}, fmt.Errorf("read collections response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Status: resp.StatusCode}
		var envelope types.ErrorEnvelope
		if json.Unmarshal(body, &envelope) == nil {
			statusErr.Code = envelope.Error.Code
			statusErr.Message = envelope.Error.Message
		}
		return Page{}, statusErr
	}

	var envelope struct {
		Data types.CursorPage[catalog.ProductVariant] `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Page{}, fmt.Errorf("decode collections response: %w", err)
	}
	return Page{
		Items:      envelope.Data.Items,
		HasMore:    envelope.Data.HasMore,
		NextCursor: envelope.Data.NextCursor,
	}, nil
}
