package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/allrev/internal/config"
	"github.com/example/allrev/internal/migration"
	"github.com/example/allrev/internal/routes"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Run(db))

	cfg := &config.Config{
		AppPort:      "0",
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
	}

	app := fiber.New()
	routes.Register(app, db, cfg)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func registerAgency(t *testing.T, app *fiber.App, agency, email string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"agency_name": agency,
		"name":        "Owner",
		"email":       email,
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createResource(t *testing.T, app *fiber.App, token, path string, payload fiber.Map) map[string]interface{} {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, path, token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "POST %s: %v", path, body)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupTestApp(t)

	token := registerAgency(t, app, "Acme Advisory", "owner@acme.test")
	require.NotEmpty(t, token)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "owner@acme.test",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "owner@acme.test",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrderLifecycle(t *testing.T) {
	app := setupTestApp(t)
	token := registerAgency(t, app, "Acme Advisory", "owner@acme.test")

	client := createResource(t, app, token, "/api/clients/", fiber.Map{"name": "Maria"})
	functionality := createResource(t, app, token, "/api/functionalities/", fiber.Map{"name": "Thesis review"})

	order := createResource(t, app, token, "/api/orders/", fiber.Map{
		"client_id":      client["id"],
		"order_number":   "ORD-100",
		"description":    "dissertation package",
		"payment_method": "pix",
		"amount_total":   350,
		"items": []fiber.Map{
			{"functionality_id": functionality["id"]},
			{"functionality_id": functionality["id"]},
		},
		"installments": []fiber.Map{
			{"amount": 300, "due_date": "2024-02-05T00:00:00Z"},
			{"amount": 50, "due_date": "2024-03-06T00:00:00Z"},
		},
	})

	assert.Equal(t, "PENDING", order["payment_status"])
	assert.Equal(t, "PENDING", order["work_status"])
	assert.Equal(t, "TWO", order["payment_terms"])

	orderID := order["id"].(string)

	// Paying the first installment moves the order to PARTIALLY_PAID.
	resp, _ := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/orders/%s/installments/1/pay", orderID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "PARTIALLY_PAID", data["payment_status"])
	assert.Equal(t, "300", data["amount_paid"])

	// Paying an installment twice is rejected.
	resp, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/orders/%s/installments/1/pay", orderID), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Paying the remainder settles the order.
	resp, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/orders/%s/installments/2/pay", orderID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, token, nil)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "PAID", data["payment_status"])

	// Finishing every item completes the order.
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	for _, raw := range items {
		item := raw.(map[string]interface{})
		resp, _ = doJSON(t, app, http.MethodPatch,
			"/api/order-items/"+item["id"].(string)+"/status", token,
			fiber.Map{"item_status": "FINISHED"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, body = doJSON(t, app, http.MethodGet, "/api/orders/"+orderID, token, nil)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["work_status"])
}

func TestOrderInstallmentPlanMustMatchTotal(t *testing.T) {
	app := setupTestApp(t)
	token := registerAgency(t, app, "Acme Advisory", "owner@acme.test")

	client := createResource(t, app, token, "/api/clients/", fiber.Map{"name": "Maria"})
	functionality := createResource(t, app, token, "/api/functionalities/", fiber.Map{"name": "Review"})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/", token, fiber.Map{
		"client_id":    client["id"],
		"order_number": "ORD-200",
		"amount_total": 100,
		"items":        []fiber.Map{{"functionality_id": functionality["id"]}},
		"installments": []fiber.Map{
			{"amount": 30, "due_date": "2024-02-05T00:00:00Z"},
			{"amount": 30, "due_date": "2024-03-05T00:00:00Z"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateOrderNumberRejected(t *testing.T) {
	app := setupTestApp(t)
	token := registerAgency(t, app, "Acme Advisory", "owner@acme.test")

	client := createResource(t, app, token, "/api/clients/", fiber.Map{"name": "Maria"})
	functionality := createResource(t, app, token, "/api/functionalities/", fiber.Map{"name": "Review"})

	payload := fiber.Map{
		"client_id":    client["id"],
		"order_number": "ORD-300",
		"amount_total": 100,
		"items":        []fiber.Map{{"functionality_id": functionality["id"]}},
	}
	createResource(t, app, token, "/api/orders/", payload)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders/", token, payload)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTenantIsolation(t *testing.T) {
	app := setupTestApp(t)
	tokenA := registerAgency(t, app, "Agency A", "a@a.test")
	tokenB := registerAgency(t, app, "Agency B", "b@b.test")

	client := createResource(t, app, tokenA, "/api/clients/", fiber.Map{"name": "Maria"})
	functionality := createResource(t, app, tokenA, "/api/functionalities/", fiber.Map{"name": "Review"})
	order := createResource(t, app, tokenA, "/api/orders/", fiber.Map{
		"client_id":    client["id"],
		"order_number": "ORD-1",
		"amount_total": 100,
		"items":        []fiber.Map{{"functionality_id": functionality["id"]}},
	})

	// Tenant B sees none of tenant A's records.
	resp, body := doJSON(t, app, http.MethodGet, "/api/orders/", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/orders/"+order["id"].(string), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/clients/"+client["id"].(string), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportsSummary(t *testing.T) {
	app := setupTestApp(t)
	token := registerAgency(t, app, "Acme Advisory", "owner@acme.test")

	client := createResource(t, app, token, "/api/clients/", fiber.Map{"name": "Maria"})
	functionality := createResource(t, app, token, "/api/functionalities/", fiber.Map{"name": "Review"})
	createResource(t, app, token, "/api/orders/", fiber.Map{
		"client_id":    client["id"],
		"order_number": "ORD-1",
		"amount_total": 100,
		"items":        []fiber.Map{{"functionality_id": functionality["id"]}},
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "100", data["amount_total"])
	assert.Equal(t, "100", data["outstanding"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/reports/receivables", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := body["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "100", body["total"])
}
