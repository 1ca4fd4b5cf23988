package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 8 * time.Second

// Client issues cart mutations and section fetches against the upstream
// commerce API. All calls are single-shot; the caller owns UI rollback.
type Client struct {
	baseURL string
	routes  Routes
	http    *http.Client
}

// NewClient constructs a cart API client. When baseURL is empty, the client
// serves canned data for local development and tests.
func NewClient(baseURL string, routes Routes) *Client {
	defaults := DefaultRoutes()
	if routes.CartAddPath == "" {
		routes.CartAddPath = defaults.CartAddPath
	}
	if routes.CartChangePath == "" {
		routes.CartChangePath = defaults.CartChangePath
	}
	if routes.CartPath == "" {
		routes.CartPath = defaults.CartPath
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		routes:  routes,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Routes returns the path table the client was built with.
func (c *Client) Routes() Routes {
	return c.routes
}

// AddLine adds quantity units of a variant, with optional line-item
// properties, and returns the resulting cart snapshot.
func (c *Client) AddLine(ctx context.Context, variantID int64, quantity int, properties map[string]string) (Snapshot, error) {
	if c == nil || c.baseURL == "" {
		return fakeAddLine(variantID, quantity), nil
	}
	return c.postJSON(ctx, c.routes.CartAddPath, addPayload{
		ID:         variantID,
		Quantity:   quantity,
		Properties: properties,
	})
}

// ChangeLine sets the quantity of an existing line. Quantity 0 is the removal
// convention; there is no separate remove endpoint.
func (c *Client) ChangeLine(ctx context.Context, lineKey string, quantity int) (Snapshot, error) {
	if c == nil || c.baseURL == "" {
		return fakeChangeLine(lineKey, quantity), nil
	}
	return c.postJSON(ctx, c.routes.CartChangePath, changePayload{
		ID:       lineKey,
		Quantity: quantity,
	})
}

// FetchSnapshot retrieves the current cart state, used for count refreshes.
func (c *Client) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	if c == nil || c.baseURL == "" {
		return fakeSnapshot(), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, c.routes.CartPath+".js")
	if err != nil {
		return Snapshot{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Snapshot{}, apiErrorFromBody(resp.StatusCode, resp.Body)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// FetchSections requests rendered HTML fragments for the named sections at
// the given page path, using the `?sections=` rendering convention. The
// returned map is keyed by section name; a missing key means the theme does
// not render that section on this path.
func (c *Client) FetchSections(ctx context.Context, pagePath string, names ...string) (map[string]string, error) {
	if c == nil || c.baseURL == "" {
		return fakeSections(names...), nil
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("commerce: no section names given")
	}

	endpoint, err := url.JoinPath(c.baseURL, pagePath)
	if err != nil {
		return nil, err
	}
	endpoint += "?sections=" + url.QueryEscape(strings.Join(names, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, apiErrorFromBody(resp.StatusCode, resp.Body)
	}

	sections := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// FetchPage retrieves the full rendered page at path, for the fallback tier
// when targeted section rendering is unavailable.
func (c *Client) FetchPage(ctx context.Context, pagePath string) (string, error) {
	if c == nil || c.baseURL == "" {
		return fakePage(), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, pagePath)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", apiErrorFromBody(resp.StatusCode, resp.Body)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (Snapshot, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Snapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Snapshot{}, apiErrorFromBody(resp.StatusCode, resp.Body)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
