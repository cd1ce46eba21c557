package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troop-fundraiser/models"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T) (*App, *testClient) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("DATA_BACKEND", "local")
	t.Setenv("SESSION_STORE", "sql")
	t.Setenv("ADMIN_PASSWORDS", "den-leader, cubmaster")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("PRODUCT_IMAGE_DIR", dir)
	t.Setenv("IMAGE_CACHE_DIR", dir+"/cache")
	t.Setenv("BASE_URL", "https://pack42.example.org")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	application, err := Initialize(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	server := httptest.NewServer(application.Handler)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return application, &testClient{t: t, server: server, client: &http.Client{Jar: jar}}
}

// newBrowser returns a client with its own cookie jar against the same server
func (c *testClient) newBrowser() *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(c.t, err)
	return &testClient{t: c.t, server: c.server, client: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *testClient) login() {
	c.t.Helper()
	resp, _ := c.do(http.MethodPost, "/admin/login", models.LoginRequest{Name: "Akela", Password: "cubmaster"})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

func TestPing(t *testing.T) {
	_, c := newTestServer(t)
	resp, body := c.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestStorefrontCheckoutFlow(t *testing.T) {
	application, c := newTestServer(t)
	ctx := context.Background()
	scout := models.Scout{
		ID: "s1", Name: "Sam Rivera", Slug: "sam-rivera", Rank: models.RankWolf,
		ParentName: "Ana Rivera", ParentEmails: []string{"ana@example.com"}, Active: true,
	}
	require.NoError(t, application.Backend.SaveScout(ctx, &scout))

	resp, body := c.do(http.MethodGet, "/api/attribution?scout=sam-rivera", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var attribution models.AttributionResponse
	require.NoError(t, json.Unmarshal(body, &attribution))
	assert.Equal(t, "s1", attribution.Attribution.ScoutID)

	// navigation without the parameter keeps the scout
	_, body = c.do(http.MethodGet, "/api/attribution", nil)
	require.NoError(t, json.Unmarshal(body, &attribution))
	assert.Equal(t, "s1", attribution.Attribution.ScoutID)

	resp, _ = c.do(http.MethodPost, "/api/cart/items", models.AddToCartRequest{ProductID: "caramel-corn", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = c.do(http.MethodPost, "/api/cart/items", models.AddToCartRequest{ProductID: "kettle-corn", Quantity: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.CartResponse
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Equal(t, models.Money(8250), cart.Total)
	assert.Equal(t, 3, cart.ItemCount)

	resp, body = c.do(http.MethodPost, "/api/checkout", models.CheckoutRequest{CustomerName: "Jane Doe"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Fields, "customerEmail")
	assert.Contains(t, errResp.Fields, "customerPhone")

	resp, body = c.do(http.MethodPost, "/api/checkout", models.CheckoutRequest{
		CustomerName: "Jane Doe", CustomerEmail: "jane@example.com", CustomerPhone: "555-0100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var checkout models.CheckoutResponse
	require.NoError(t, json.Unmarshal(body, &checkout))
	assert.True(t, checkout.Persisted)
	assert.Equal(t, "s1", checkout.Order.ScoutIDValue())
	assert.Equal(t, models.Money(8250), checkout.Order.Total)
	assert.NotNil(t, checkout.Payment)

	resp, body = c.do(http.MethodGet, "/api/checkout/confirmation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var confirmed models.Order
	require.NoError(t, json.Unmarshal(body, &confirmed))
	assert.Equal(t, checkout.Order.OrderID, confirmed.OrderID)

	// a different browser has no attribution and no confirmation
	other := c.newBrowser()
	_, body = other.do(http.MethodGet, "/api/attribution", nil)
	require.NoError(t, json.Unmarshal(body, &attribution))
	assert.Nil(t, attribution.Attribution)
	resp, _ = other.do(http.MethodGet, "/api/checkout/confirmation", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board models.LeaderboardResponse
	require.NoError(t, json.Unmarshal(body, &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, models.Money(8250), board.Entries[0].Total)
}

func TestCartErrors(t *testing.T) {
	_, c := newTestServer(t)

	resp, _ := c.do(http.MethodPost, "/api/cart/items", models.AddToCartRequest{ProductID: "licorice", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/checkout", models.CheckoutRequest{
		CustomerName: "Jane Doe", CustomerEmail: "jane@example.com", CustomerPhone: "555-0100",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/api/cart/items", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAdminRequiresLogin(t *testing.T) {
	_, c := newTestServer(t)

	for _, path := range []string{"/admin/orders", "/admin/scouts", "/admin/config", "/admin/orders/export"} {
		resp, _ := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, _ := c.do(http.MethodPost, "/admin/login", models.LoginRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := c.do(http.MethodGet, "/admin/login", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "csrfToken")
}

func TestAdminScoutsAndOrders(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	resp, body := c.do(http.MethodPost, "/admin/scouts", models.SaveScoutRequest{Scout: models.Scout{
		Name: "Lee Chen", Rank: models.RankBear, ParentName: "Mei Chen",
		ParentEmails: []string{"mei@example.com"}, Active: true,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var scout models.Scout
	require.NoError(t, json.Unmarshal(body, &scout))
	assert.Equal(t, "lee-chen", scout.Slug)

	changed := scout
	changed.Slug = "lee"
	resp, _ = c.do(http.MethodPut, "/admin/scouts/"+scout.ID, models.SaveScoutRequest{Scout: changed})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/admin/scouts/"+scout.ID+"/flyer?format=html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "https://pack42.example.org/?scout=lee-chen")

	resp, body = c.do(http.MethodPost, "/admin/orders", models.OfflineOrderRequest{
		CustomerName: "Pat Lee",
		ScoutID:      scout.ID,
		Items:        []models.OfflineOrderItem{{ProductID: "caramel-corn", Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, models.ChannelOffline, order.Type)

	resp, body = c.do(http.MethodPatch, "/admin/orders/"+order.OrderID+"/status", models.UpdateOrderStatusRequest{Status: "paid"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	resp, _ = c.do(http.MethodPatch, "/admin/orders/"+order.OrderID+"/status", models.UpdateOrderStatusRequest{Status: "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/admin/orders?status=paid&sort=total&dir=desc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.OrderListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, models.Money(3500), list.Total)

	resp, body = c.do(http.MethodGet, "/admin/orders/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "PK"), "xlsx is a zip archive")

	resp, _ = c.do(http.MethodDelete, "/admin/orders/"+order.OrderID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = c.do(http.MethodDelete, "/admin/orders/"+order.OrderID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/admin/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = c.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminConfig(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	resp, body := c.do(http.MethodGet, "/admin/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg models.SiteConfig
	require.NoError(t, json.Unmarshal(body, &cfg))

	cfg.Pack.Name = "Pack 7"
	resp, _ = c.do(http.MethodPut, "/admin/config", cfg)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = c.do(http.MethodGet, "/api/config", nil)
	var public models.PublicSiteConfig
	require.NoError(t, json.Unmarshal(body, &public))
	assert.Equal(t, "Pack 7", public.Pack.Name)

	cfg.Pack.Name = ""
	resp, body = c.do(http.MethodPut, "/admin/config", cfg)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Fields, "pack.name")
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "ftp")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("DATA_BACKEND", "remote")
	t.Setenv("SCRIPT_URL", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}
