package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/volantvm/bridgectl/internal/db"
	"github.com/volantvm/bridgectl/internal/events"
	"github.com/volantvm/bridgectl/internal/network"
)

const defaultBaseURL = "http://127.0.0.1:7780"

// Client wraps REST access to the bridgectld API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: http %d", e.Status)
	}
	return fmt.Sprintf("client: http %d: %s", e.Status, e.Message)
}

// New creates a client with the provided base URL (e.g. http://127.0.0.1:7780).
func New(rawURL string) (*Client, error) {
	if rawURL == "" {
		rawURL = defaultBaseURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", parsed.Scheme)
	}
	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

// Bridge is a bridge and its attached ports.
type Bridge = network.Bridge

// Entry is one journaled operation.
type Entry = db.Entry

// BridgeEvent is a change streamed from the daemon.
type BridgeEvent = events.BridgeEvent

type nameRequest struct {
	Name string `json:"name"`
}

func (c *Client) ListBridges(ctx context.Context) ([]Bridge, error) {
	var items []Bridge
	if err := c.call(ctx, http.MethodGet, "/api/v1/bridges", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateBridge(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "/api/v1/bridges", nameRequest{Name: name}, nil)
}

func (c *Client) DeleteBridge(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/bridges/"+url.PathEscape(name), nil, nil)
}

func (c *Client) AddInterface(ctx context.Context, bridgeName, intf string) error {
	path := "/api/v1/bridges/" + url.PathEscape(bridgeName) + "/interfaces"
	return c.call(ctx, http.MethodPost, path, nameRequest{Name: intf}, nil)
}

func (c *Client) DeleteInterface(ctx context.Context, bridgeName, intf string) error {
	path := "/api/v1/bridges/" + url.PathEscape(bridgeName) + "/interfaces/" + url.PathEscape(intf)
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

// Journal fetches up to limit journal entries, newest first.
func (c *Client) Journal(ctx context.Context, limit int) ([]Entry, error) {
	path := "/api/v1/journal"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []Entry
	if err := c.call(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WatchEvents streams bridge events and invokes handler for each payload
// until the context is cancelled or the server closes the connection.
func (c *Client) WatchEvents(ctx context.Context, handler func(BridgeEvent)) error {
	wsURL := *c.baseURL
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
	wsURL.Path = strings.TrimSuffix(wsURL.Path, "/") + "/api/v1/events"

	conn, _, err := c.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("client: watch events: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var event BridgeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("client: event stream error: %w", err)
		}
		if handler != nil {
			handler(event)
		}
	}
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("client: parse path: %w", err)
	}
	resolved := c.baseURL.ResolveReference(ref)
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, resolved.String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("client: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			if msg, ok := payload["error"].(string); ok {
				apiErr.Message = msg
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
