package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
	"troop-fundraiser/utils"
)

// OrderController handles HTTP requests for the admin order table
type OrderController struct {
	orders  *service.OrderService
	exports *service.ExportService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *service.OrderService, exports *service.ExportService) *OrderController {
	return &OrderController{orders: orders, exports: exports}
}

// Orders handles GET /admin/orders and POST /admin/orders (offline order)
// Query parameters for GET: status, scoutId, channel, q, sort (orderDate|total|customerName|status), dir (asc|desc)
// Example request:
// GET /admin/orders?status=pending&sort=total&dir=desc
// Example response:
// {"orders": [...], "count": 2, "total": 117.50}
func (c *OrderController) Orders(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Orders: Received %s request to %s", r.Method, r.URL.Path)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := utils.OrderFilter{
			Status:  models.OrderStatus(strings.ToLower(q.Get("status"))),
			ScoutID: q.Get("scoutId"),
			Channel: models.Channel(strings.ToLower(q.Get("channel"))),
			Query:   q.Get("q"),
		}
		sortKey := q.Get("sort")
		if sortKey == "" {
			sortKey = utils.SortByDate
		}
		desc := !strings.EqualFold(q.Get("dir"), "asc")

		resp, err := c.orders.List(r.Context(), filter, sortKey, desc)
		if err != nil {
			log.Printf("❌ Orders: %v", err)
			writeUnavailable(w, "orders could not be loaded")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req models.OfflineOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		order, err := c.orders.CreateOffline(r.Context(), &req)
		if err != nil {
			writeServiceError(w, "CreateOfflineOrder", err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Order handles DELETE /admin/orders/{id}
func (c *OrderController) Order(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := pathParam(r.URL.Path, "/admin/orders/")
	if err := c.orders.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "DeleteOrder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /admin/orders/{id}/status
// Example request:
// PATCH /admin/orders/2F4K9XQ1ZB0W/status
// {"status": "paid"}
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := pathParam(r.URL.Path, "/admin/orders/")

	var req models.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := c.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, "UpdateStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Export handles GET /admin/orders/export and returns an XLSX workbook
func (c *OrderController) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := c.exports.ExportOrders(r.Context())
	if err != nil {
		log.Printf("❌ Export: %v", err)
		writeUnavailable(w, "orders could not be exported")
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
