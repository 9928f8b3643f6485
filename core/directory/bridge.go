package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"customer-sync/core/customer"
)

// AppNameHeader carries the application name the bridge opens its session with.
const AppNameHeader = "X-App-Name"

// BridgeDirectory talks to the accounting product through an HTTP bridge.
type BridgeDirectory struct {
	baseURL  string
	appName  string
	retries  int
	maxField int
	backoff  time.Duration
	http     *http.Client
}

// bridgeCustomer is a customer record as sent and returned by the bridge.
type bridgeCustomer struct {
	ListID string `json:"list_id,omitempty"`
	Name   string `json:"name"`
	Fax    string `json:"fax"`
}

// bridgeResponse is one entry of the bridge response list.
type bridgeResponse struct {
	StatusCode    int              `json:"status_code"`
	StatusMessage string           `json:"status_message"`
	Customers     []bridgeCustomer `json:"customers"`
}

// bridgeEnvelope wraps the response list returned for every request.
type bridgeEnvelope struct {
	Responses []bridgeResponse `json:"responses"`
}

// NewBridgeDirectory creates a bridge client based on the configuration.
func NewBridgeDirectory(cfg Config) (*BridgeDirectory, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("directory endpoint is empty")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid directory endpoint: %w", err)
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	timeout := timeoutOf(cfg)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &BridgeDirectory{
		baseURL:  strings.TrimRight(cfg.Endpoint, "/"),
		appName:  cfg.AppName,
		retries:  retries,
		maxField: cfg.MaxFieldLength,
		backoff:  200 * time.Millisecond,
		http:     &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// Add creates a customer and returns the list id from the first response.
func (d *BridgeDirectory) Add(ctx context.Context, name, fax string) (string, error) {
	body := bridgeCustomer{
		Name: Truncate(name, d.maxField),
		Fax:  Truncate(fax, d.maxField),
	}
	env, err := d.do(ctx, http.MethodPost, "/customers", body)
	if err != nil {
		return "", err
	}
	if len(env.Responses) == 0 {
		return "", fmt.Errorf("customer add: %w", ErrNoResponse)
	}

	resp := env.Responses[0]
	if resp.StatusCode != 0 {
		return "", &RemoteError{Op: "customer add", StatusCode: resp.StatusCode, Message: resp.StatusMessage}
	}
	if len(resp.Customers) == 0 || resp.Customers[0].ListID == "" {
		return "", fmt.Errorf("customer add returned no list id: %w", ErrNoResponse)
	}
	return resp.Customers[0].ListID, nil
}

// QueryAll walks every response with a non-negative status and collects its customers.
func (d *BridgeDirectory) QueryAll(ctx context.Context) ([]customer.Customer, error) {
	env, err := d.do(ctx, http.MethodGet, "/customers", nil)
	if err != nil {
		return nil, err
	}

	customers := make([]customer.Customer, 0)
	for _, resp := range env.Responses {
		// 0 is ok, positive codes are warnings
		if resp.StatusCode < 0 {
			continue
		}
		for _, c := range resp.Customers {
			customers = append(customers, customer.Customer{
				Name:       c.Name,
				Fax:        c.Fax,
				ExternalID: c.ListID,
			})
		}
	}
	return customers, nil
}

// Delete removes a customer. An empty response list is treated as success.
func (d *BridgeDirectory) Delete(ctx context.Context, externalID string) error {
	if externalID == "" {
		return errors.New("customer delete: empty list id")
	}
	env, err := d.do(ctx, http.MethodDelete, "/customers/"+url.PathEscape(externalID), nil)
	if err != nil {
		return err
	}
	if len(env.Responses) == 0 {
		return nil
	}
	if resp := env.Responses[0]; resp.StatusCode != 0 {
		return &RemoteError{Op: "customer delete", StatusCode: resp.StatusCode, Message: resp.StatusMessage}
	}
	return nil
}

// do sends a request, retrying connection failures, and decodes the envelope.
func (d *BridgeDirectory) do(ctx context.Context, method, path string, body any) (*bridgeEnvelope, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}

		env, err := d.send(ctx, method, path, payload)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if !errors.Is(err, ErrConnection) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (d *BridgeDirectory) send(ctx context.Context, method, path string, payload []byte) (*bridgeEnvelope, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if d.appName != "" {
		req.Header.Set(AppNameHeader, d.appName)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrConnection, err)
	}

	// The bridge answers 5xx when it cannot open a session with the product
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: bridge status %d: %s", ErrConnection, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Op: method + " " + path, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	var env bridgeEnvelope
	if len(bytes.TrimSpace(data)) == 0 {
		return &env, nil
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return &env, nil
}
