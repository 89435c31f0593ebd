package controllers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePublicOrder(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/public/orders",
		`{"items":[{"item_id":1,"qty":2},{"item_id":2,"qty":1}],"total_amount":1,"customer_name":"Asha"}`, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(180), body["total_amount"])
	assert.Equal(t, "queued", body["status"])
	assert.NotZero(t, body["order_id"])
}

func TestCreateOrderValidation(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty items", `{"items":[]}`, http.StatusBadRequest, models.ErrNoItemsProvided},
		{"malformed item id", `{"items":[{"item_id":"abc"}]}`, http.StatusBadRequest, models.ErrInvalidItemReference},
		{"zero quantity", `{"items":[{"item_id":1,"qty":0}]}`, http.StatusBadRequest, models.ErrValidationFailed},
		{"unknown items", `{"items":[{"item_id":999},{"item_id":1}]}`, http.StatusNotFound, models.ErrItemNotFound},
		{"malformed json", `{"items":`, http.StatusBadRequest, models.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/public/orders", tt.body, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["code"])
		})
	}

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestUnknownItemsAreListed(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/public/orders", `{"items":[{"item_id":999},{"item_id":998}]}`, "")

	require.Equal(t, http.StatusNotFound, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Equal(t, []interface{}{float64(999), float64(998)}, details["missing_item_ids"])
}

func TestUpdateStatus(t *testing.T) {
	env := setupEnv(t)
	chef, token := env.staff(t, "chef", models.RoleChief)
	order, err := env.orders.CreateOrder(context.Background(), services.CreateOrderRequest{
		Items: []services.OrderLineRequest{{ItemID: float64(1)}},
	}, services.PublicActor)
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/orders/%d/status", order.ID)

	w := env.do(http.MethodPut, path, `{"status":"preparing"}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "queued", body["old_status"])
	assert.Equal(t, "preparing", body["status"])
	assert.NotEmpty(t, body["message"])

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/history", order.ID), "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.OrderHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].OldStatus)
	require.NotNil(t, rows[1].ChangedBy)
	assert.Equal(t, chef.ID, *rows[1].ChangedBy)

	w = env.do(http.MethodPut, path, `{"status":"done"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrInvalidStatus, decode(t, w)["code"])

	w = env.do(http.MethodPut, "/api/v1/orders/4242/status", `{"status":"ready"}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrOrderNotFound, decode(t, w)["code"])

	w = env.do(http.MethodPut, "/api/v1/orders/abc/status", `{"status":"ready"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuickPOSOrder(t *testing.T) {
	env := setupEnv(t)
	_, token := env.staff(t, "frontdesk", models.RoleReceptionist)

	w := env.do(http.MethodPost, "/api/v1/pos/orders", `{"items":[{"item_id":2,"qty":2}],"simulate_payment":true}`, token)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "served", body["status"])
	assert.Equal(t, float64(160), body["total"])
}

func TestRoleGates(t *testing.T) {
	env := setupEnv(t)
	_, receptionist := env.staff(t, "frontdesk", models.RoleReceptionist)

	w := env.do(http.MethodGet, "/api/v1/kpis/chef", "", receptionist)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/v1/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/orders", "", receptionist)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportCSV(t *testing.T) {
	env := setupEnv(t)
	_, token := env.staff(t, "boss", models.RoleManager)
	_, err := env.orders.CreateOrder(context.Background(), services.CreateOrderRequest{
		Items: []services.OrderLineRequest{{ItemID: float64(1), Qty: intPtr(3)}, {ItemID: float64(2)}},
	}, services.PublicActor)
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/v1/manager/orders/export", "", token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders_export_")
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, services.ExportHeaders, records[0])
	assert.Equal(t, "Espresso", records[1][9])
	assert.Equal(t, "3", records[1][10])
	assert.Equal(t, "230.00", records[1][4])
}
