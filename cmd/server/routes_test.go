package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu-backend/internal/app"
	"qrmenu-backend/internal/config"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/payment"
)

// --- Setup ---

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort:             "0",
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		CORSOrigins:          "http://localhost:5173",
		PublicOrigin:         "https://menu.example.com",
		QRServiceURL:         "https://qr.example.com/create",
		QRSize:               300,
		AdminEmail:           "admin@example.com",
		AdminPassword:        "secret",
		PaymentDelay:         time.Millisecond,
		PaymentSuccessRate:   1,
		MenuMonthlyEditLimit: 2,
		MailMode:             "simulated",
		MailFrom:             "no-reply@example.com",
		CampaignWorkers:      2,
		SnowflakeNode:        1,
		Location:             "UTC",
	}
}

type harness struct {
	t      *testing.T
	a      *app.Application
	server *fiber.App
	token  string
}

func setup(t *testing.T, successRate float64) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	a, err := app.New(testConfig(), logger, app.Options{
		Gateway: payment.NewSimulatedGateway(time.Millisecond, successRate, 1),
	})
	require.NoError(t, err)

	h := &harness{t: t, a: a, server: newServer(a)}
	status, body := h.do(http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, status)
	h.token = body["token"].(string)
	return h
}

func (h *harness) raw(method, path, body, token string) *http.Response {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.Test(req, 5000)
	require.NoError(h.t, err)
	return resp
}

func (h *harness) do(method, path, body, token string) (int, map[string]interface{}) {
	h.t.Helper()
	resp := h.raw(method, path, body, token)
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	out := map[string]interface{}{}
	if len(bytes.TrimSpace(data)) > 0 && data[0] == '{' {
		require.NoError(h.t, json.Unmarshal(data, &out))
	}
	return resp.StatusCode, out
}

func (h *harness) admin(method, path, body string) (int, map[string]interface{}) {
	h.t.Helper()
	return h.do(method, path, body, h.token)
}

func (h *harness) createBusiness(name string) string {
	h.t.Helper()
	status, body := h.admin(http.MethodPost, "/api/admin/businesses",
		`{"name":"`+name+`","email":"owner@example.com","owner":"Awa","business_type":"bakery","subscription_package":"premium"}`)
	require.Equal(h.t, http.StatusCreated, status)
	return body["id"].(string)
}

// --- Tests ---

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	h := setup(t, 1)

	status, _ := h.do(http.MethodGet, "/api/admin/businesses", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBusinessLifecycle(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Chez Awa")

	status, body := h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Actif", body["status"])
	assert.Equal(t, "pending", body["payment_status"])
	assert.Equal(t, "Boulangerie", body["type"].(map[string]interface{})["label"])

	status, body = h.admin(http.MethodPut, "/api/admin/businesses/"+id, `{"phone":"+221 77 123 45 67"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "+221 77 123 45 67", body["phone"])
	assert.Equal(t, "Chez Awa", body["name"])

	status, _ = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/suspend", `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/suspend", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Suspendu", body["status"])

	status, _ = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/toggle-status", "")
	assert.Equal(t, http.StatusConflict, status)

	status, body = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/reactivate", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Actif", body["status"])
	assert.Equal(t, "paid", body["payment_status"])
	assert.NotEmpty(t, body["last_payment"])

	status, body = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/qr-code", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["qr_code_url"], "https://qr.example.com/create?size=300x300&data=")
}

func TestTrashRoutes(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Le Baobab")

	status, _ := h.admin(http.MethodDelete, "/api/admin/businesses/"+id, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := h.admin(http.MethodPost, "/api/admin/trash/"+id+"/restore", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Le Baobab", body["name"])

	require.Equal(t, http.StatusOK, first(h.admin(http.MethodDelete, "/api/admin/businesses/"+id, "")))
	status, body = h.admin(http.MethodDelete, "/api/admin/trash", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["deleted"])

	status, _ = h.admin(http.MethodPost, "/api/admin/trash/"+id+"/restore", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatsAndNotifications(t *testing.T) {
	h := setup(t, 1)
	h.createBusiness("A")
	h.createBusiness("B")

	status, body := h.admin(http.MethodGet, "/api/admin/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["active"])
	assert.EqualValues(t, 2, body["unread_notifications"])

	status, body = h.admin(http.MethodPut, "/api/admin/notifications/read-all", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["updated"])

	status, body = h.admin(http.MethodGet, "/api/admin/notifications/unread-count", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["unread"])
}

func TestExportCSV(t *testing.T) {
	h := setup(t, 1)
	h.createBusiness("Chez Awa, Plateau")

	resp := h.raw(http.MethodGet, "/api/admin/export/businesses.csv", "", h.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Chez Awa, Plateau",Boulangerie`)
}

func TestClientMenuQuota(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Pizzeria Roma")

	status, body := h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/client-token", "")
	require.Equal(t, http.StatusOK, status)
	clientToken := body["token"].(string)

	status, _ = h.do(http.MethodGet, "/api/admin/businesses", "", clientToken)
	assert.Equal(t, http.StatusForbidden, status)

	for i := 0; i < 2; i++ {
		status, _ = h.do(http.MethodPost, "/api/client/menu-items", `{"name":"Margherita","price":"4500"}`, clientToken)
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ = h.do(http.MethodPost, "/api/client/menu-items", `{"name":"Calzone","price":"5000"}`, clientToken)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, body = h.do(http.MethodGet, "/api/client/menu-items/quota", "", clientToken)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["remaining"])

	status, body = h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["menu_items"])
}

func TestPublicMenu(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Chez Awa")

	status, body := h.do(http.MethodGet, "/api/public/menu/"+id, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Chez Awa", body["business"].(map[string]interface{})["name"])

	status, _ = h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/toggle-status", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodGet, "/api/public/menu/"+id, "", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_scans"])
}

func TestPaymentFlow_Success(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Le Baobab")
	require.Equal(t, http.StatusOK, first(h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/suspend", `{"confirm":true}`)))

	status, body := h.do(http.MethodGet, "/api/public/paiement-public?business="+id, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "60000", body["amount_due"])

	status, body = h.do(http.MethodPost, "/api/public/payments", `{"business_id":"`+id+`"}`, "")
	require.Equal(t, http.StatusCreated, status)
	sessionID := body["id"].(string)
	assert.Equal(t, "none", body["state"])

	status, _ = h.do(http.MethodPost, "/api/public/payments/"+sessionID+"/initiate", `{"method":"wave"}`, "")
	require.Equal(t, http.StatusAccepted, status)

	require.Eventually(t, func() bool {
		_, body := h.do(http.MethodGet, "/api/public/payments/"+sessionID, "", "")
		return body["state"] == "success"
	}, 2*time.Second, 10*time.Millisecond)

	status, body = h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Actif", body["status"])
	assert.Equal(t, "paid", body["payment_status"])

	require.Eventually(t, func() bool {
		_, body := h.admin(http.MethodGet, "/api/admin/revenue-chart?period=monthly&count=1", "")
		totals, ok := body["grand_totals"].(map[string]interface{})
		return ok && totals["wave"] == "60000"
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = h.do(http.MethodPost, "/api/public/payments/"+sessionID+"/retry", "", "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestPaymentFlow_FailureAndRetry(t *testing.T) {
	h := setup(t, 0)
	id := h.createBusiness("Le Baobab")

	_, body := h.do(http.MethodPost, "/api/public/payments", `{"business_id":"`+id+`"}`, "")
	sessionID := body["id"].(string)
	require.Equal(t, http.StatusAccepted, first(h.do(http.MethodPost, "/api/public/payments/"+sessionID+"/initiate", `{"method":"card"}`, "")))

	require.Eventually(t, func() bool {
		_, body := h.do(http.MethodGet, "/api/public/payments/"+sessionID, "", "")
		return body["state"] == "failed"
	}, 2*time.Second, 10*time.Millisecond)

	_, biz := h.admin(http.MethodGet, "/api/admin/businesses/"+id, "")
	assert.Equal(t, string(models.PaymentPending), biz["payment_status"])

	status, body := h.do(http.MethodPost, "/api/public/payments/"+sessionID+"/retry", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "none", body["state"])

	status, _ = h.do(http.MethodDelete, "/api/public/payments/"+sessionID, "", "")
	assert.Equal(t, http.StatusNoContent, status)
}

func TestPaymentFlow_UnknownBusiness(t *testing.T) {
	h := setup(t, 1)

	status, _ := h.do(http.MethodPost, "/api/public/payments", `{"business_id":"12345"}`, "")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 0, h.a.Payments().Len())
}

func first(status int, _ map[string]interface{}) int { return status }

func TestAuditLogs(t *testing.T) {
	h := setup(t, 1)
	id := h.createBusiness("Dibiterie Sow")
	require.Equal(t, http.StatusOK, first(h.admin(http.MethodPost, "/api/admin/businesses/"+id+"/suspend", `{"confirm":true}`)))

	resp := h.raw(http.MethodGet, "/api/admin/audit-logs?business_id="+id, "", h.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs []models.AuditLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 3)
	assert.Equal(t, models.AuditActionStatus, logs[0].Action)
	assert.Equal(t, models.AuditActionUpdate, logs[1].Action)
	assert.Equal(t, models.AuditActionCreate, logs[2].Action)
}
