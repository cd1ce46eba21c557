package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troop-fundraiser/models"
)

func TestRemoteBackend_GetScoutsDecodesRowFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "getScouts", r.URL.Query().Get("action"))
		w.Write([]byte(`{"scouts":[
			{"id":"s1","name":"Sam","slug":"sam","rank":"Wolf","parentName":"Ana","parentEmails":"ana@example.com;luis@example.com","active":"TRUE"},
			{"id":"s2","name":"Max","slug":"max","rank":"bear","parentName":"Bo","parentEmails":["bo@example.com"],"active":false},
			{"id":"","name":"blank row"}
		]}`))
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL+"/exec", server.Client())
	scouts, err := backend.GetScouts(context.Background())
	require.NoError(t, err)
	require.Len(t, scouts, 2)

	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, scouts[0].ParentEmails)
	assert.True(t, scouts[0].Active)
	assert.Equal(t, models.RankWolf, scouts[0].Rank)
	assert.Equal(t, []string{"bo@example.com"}, scouts[1].ParentEmails)
	assert.False(t, scouts[1].Active)
}

func TestRemoteBackend_GetOrdersAcceptsLooseTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[{
			"orderId":"A1","customerName":"Jane","customerPhone":5550100,"total":"82.50",
			"items":[{"productId":"caramel-corn","productName":"Caramel Corn","price":35,"quantity":"2"},
			         {"productId":"kettle-corn","productName":"Kettle Corn","price":"12.50","quantity":1}],
			"scoutId":"","isDonation":"FALSE","orderDate":"2026-10-01T15:04:05Z","status":"Paid","type":"online"
		}]}`))
	}))
	defer server.Close()

	orders, err := NewRemoteBackend(server.URL, server.Client()).GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "5550100", o.CustomerPhone)
	assert.Equal(t, models.Money(8250), o.Total)
	assert.True(t, o.TotalMatchesItems())
	assert.Nil(t, o.ScoutID)
	assert.Equal(t, models.OrderStatusPaid, o.Status)
	assert.False(t, o.IsDonation)
}

func TestRemoteBackend_CreateOrderPostsJSON(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "createOrder", r.URL.Query().Get("action"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"success":true,"orderId":"A1"}`))
	}))
	defer server.Close()

	order := sampleOrder("A1")
	require.NoError(t, NewRemoteBackend(server.URL, server.Client()).SaveOrder(context.Background(), &order))
	assert.Equal(t, "A1", received["orderId"])
	assert.Equal(t, 82.5, received["total"])
}

func TestRemoteBackend_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`<html>login</html>`)) }},
		{"success false", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"success":false,"error":"sheet locked"}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			backend := NewRemoteBackend(server.URL, server.Client())
			_, err := backend.GetScouts(context.Background())
			assert.Error(t, err)
			assert.Error(t, backend.DeleteOrder(context.Background(), "A1"))
		})
	}
}

func TestRemoteBackend_GetConfigAcceptsEncodedString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"config":"{\"version\":1,\"pack\":{\"name\":\"Pack 42\"}}"}`))
	}))
	defer server.Close()

	cfg, err := NewRemoteBackend(server.URL, server.Client()).GetConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "Pack 42", cfg.Pack.Name)
}

func TestRemoteBackend_UnreachableFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := newLocalBackend(t)
	scout := sampleScout("scout-1", true)
	require.NoError(t, local.SaveScout(ctx, &scout))

	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	backend := NewFallbackBackend(NewRemoteBackend(endpoint, nil), local)
	scouts, err := backend.GetScouts(ctx)
	require.NoError(t, err)
	assert.Len(t, scouts, 1)
}
