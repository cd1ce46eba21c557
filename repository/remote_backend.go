package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"troop-fundraiser/models"
)

// RemoteBackend talks to the spreadsheet script endpoint.
// Reads are GET ?action=..., writes are POST ?action=... with a JSON body.
type RemoteBackend struct {
	endpoint string
	client   *http.Client
}

// NewRemoteBackend creates a new RemoteBackend. A nil client uses a client with a 20s timeout.
func NewRemoteBackend(endpoint string, client *http.Client) *RemoteBackend {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RemoteBackend{endpoint: endpoint, client: client}
}

// Ensure RemoteBackend implements DataBackendInterface
var _ DataBackendInterface = (*RemoteBackend)(nil)

func (b *RemoteBackend) Name() string { return "remote" }

// writeResult is the common shape of every POST response
type writeResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetScouts fetches the roster
func (b *RemoteBackend) GetScouts(ctx context.Context) ([]models.Scout, error) {
	var resp struct {
		Scouts []wireScout `json:"scouts"`
	}
	if err := b.get(ctx, "getScouts", &resp); err != nil {
		return nil, err
	}
	scouts := make([]models.Scout, 0, len(resp.Scouts))
	for _, s := range resp.Scouts {
		if s.ID == "" {
			continue
		}
		scouts = append(scouts, s.toModel())
	}
	return scouts, nil
}

// GetOrders fetches every order with its items
func (b *RemoteBackend) GetOrders(ctx context.Context) ([]models.Order, error) {
	var resp struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := b.get(ctx, "getOrders", &resp); err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		if o.OrderID == "" {
			continue
		}
		orders = append(orders, o.toModel())
	}
	return orders, nil
}

// GetConfig fetches the site configuration document
func (b *RemoteBackend) GetConfig(ctx context.Context) (*models.SiteConfig, error) {
	var resp struct {
		Config json.RawMessage `json:"config"`
	}
	if err := b.get(ctx, "getConfig", &resp); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(resp.Config)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	// The script may hand back the Config row value still JSON-encoded as a string
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
		if strings.TrimSpace(inner) == "" {
			return nil, nil
		}
		raw = []byte(inner)
	}

	var cfg models.SiteConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// SaveOrder posts the order to createOrder; the script upserts by orderId
func (b *RemoteBackend) SaveOrder(ctx context.Context, order *models.Order) error {
	result, err := b.post(ctx, "createOrder", order)
	if err != nil {
		return err
	}
	if result.OrderID != "" && result.OrderID != order.OrderID {
		log.Printf("⚠️ RemoteBackend.SaveOrder: script returned orderId=%s for %s", result.OrderID, order.OrderID)
	}
	return nil
}

func (b *RemoteBackend) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	_, err := b.post(ctx, "updateOrderStatus", map[string]string{"orderId": orderID, "status": string(status)})
	return err
}

func (b *RemoteBackend) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := b.post(ctx, "deleteOrder", map[string]string{"orderId": orderID})
	return err
}

func (b *RemoteBackend) SaveScout(ctx context.Context, scout *models.Scout) error {
	_, err := b.post(ctx, "saveScout", newScoutRecord(*scout))
	return err
}

func (b *RemoteBackend) DeleteScout(ctx context.Context, scoutID string) error {
	_, err := b.post(ctx, "deleteScout", map[string]string{"id": scoutID})
	return err
}

func (b *RemoteBackend) SaveConfig(ctx context.Context, cfg *models.SiteConfig) error {
	_, err := b.post(ctx, "saveConfig", map[string]interface{}{"config": cfg})
	return err
}

func (b *RemoteBackend) actionURL(action string) (string, error) {
	if strings.TrimSpace(b.endpoint) == "" {
		return "", fmt.Errorf("remote endpoint is not configured")
	}
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid remote endpoint: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (b *RemoteBackend) get(ctx context.Context, action string, out interface{}) error {
	target, err := b.actionURL(action)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	body, err := b.do(req, action)
	if err != nil {
		return err
	}

	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("malformed %s response: %w", action, err)
	}
	if envelope.Success != nil && !*envelope.Success {
		return fmt.Errorf("%s failed: %s", action, envelope.Error)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed %s response: %w", action, err)
	}
	return nil
}

func (b *RemoteBackend) post(ctx context.Context, action string, payload interface{}) (*writeResult, error) {
	target, err := b.actionURL(action)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := b.do(req, action)
	if err != nil {
		return nil, err
	}
	var result writeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("malformed %s response: %w", action, err)
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = "script reported failure"
		}
		return nil, fmt.Errorf("%s failed: %s", action, result.Error)
	}
	return &result, nil
}

func (b *RemoteBackend) do(req *http.Request, action string) ([]byte, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned HTTP %d", action, resp.StatusCode)
	}
	return body, nil
}
