package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fetcher defines the read endpoints the synchronization core polls.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchOrder(ctx context.Context, orderID string) (OrderSnapshot, error)
	FetchWallet(ctx context.Context, riderID string) (WalletSnapshot, error)
	FetchConversations(ctx context.Context, userID string) (ConversationList, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// ErrMissingID is returned when a fetch is attempted without a resource id.
var ErrMissingID = errors.New("resource id required")

// ErrInvalidID is returned for ids that would resolve to another path.
var ErrInvalidID = errors.New("invalid resource id")

// Client talks to the marketplace HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
}

const (
	defaultAPIBase   = "http://127.0.0.1:8088"
	defaultUserAgent = "courier/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for apiBase. A bare host:port is treated as http.
// token is sent as a bearer token when non-empty.
func NewClient(apiBase, token string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchOrder retrieves the progress flags of an order.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (OrderSnapshot, error) {
	if c == nil {
		return OrderSnapshot{}, fmt.Errorf("client is nil")
	}
	id, err := resourceID("fetch order", orderID)
	if err != nil {
		return OrderSnapshot{}, err
	}
	var payload OrderSnapshot
	if err := c.get(ctx, "/api/orders/"+url.PathEscape(id)+"/status", &payload); err != nil {
		return OrderSnapshot{}, err
	}
	if payload.OrderID == "" {
		payload.OrderID = id
	}
	return payload, nil
}

// FetchWallet retrieves a rider's wallet balance.
func (c *Client) FetchWallet(ctx context.Context, riderID string) (WalletSnapshot, error) {
	if c == nil {
		return WalletSnapshot{}, fmt.Errorf("client is nil")
	}
	id, err := resourceID("fetch wallet", riderID)
	if err != nil {
		return WalletSnapshot{}, err
	}
	var payload WalletSnapshot
	if err := c.get(ctx, "/api/riders/"+url.PathEscape(id)+"/wallet", &payload); err != nil {
		return WalletSnapshot{}, err
	}
	if payload.RiderID == "" {
		payload.RiderID = id
	}
	return payload, nil
}

// FetchConversations retrieves the conversation list of a user.
func (c *Client) FetchConversations(ctx context.Context, userID string) (ConversationList, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id, err := resourceID("fetch conversations", userID)
	if err != nil {
		return nil, err
	}
	var payload ConversationList
	if err := c.get(ctx, "/api/users/"+url.PathEscape(id)+"/conversations", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// resourceID trims raw and rejects ids that would leave their path segment
// once escaped.
func resourceID(op, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	switch id {
	case "":
		return "", fmt.Errorf("%s: %w", op, ErrMissingID)
	case ".", "..":
		return "", fmt.Errorf("%s: %w: %q", op, ErrInvalidID, id)
	}
	return id, nil
}

// get requests path, which must already be escaped.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("build request path: %w", err)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
