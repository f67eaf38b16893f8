//go:build integration && postgres

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	app "github.com/gold360/backoffice/internal/app"
	"github.com/gold360/backoffice/internal/app/storage/postgres"
	"github.com/gold360/backoffice/internal/platform/database"
	"github.com/gold360/backoffice/internal/platform/migrations"
)

// TestPostgresBackedAPI runs the full middleware chain against a real
// database. Requires DATABASE_URL; load it from .env when present.
func TestPostgresBackedAPI(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := postgres.New(db)
	application, err := app.New(app.Stores{
		Products:   store,
		Warehouses: store,
		Inventory:  store,
		Customers:  store,
		Orders:     store,
		Transfers:  store,
		Shipments:  store,
		Loyalty:    store,
	}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start application: %v", err)
	}
	t.Cleanup(func() { application.Stop(context.Background()) })

	handler, err := NewRootHandler(application, Options{
		Tokens:  []string{"integration-token"},
		AuditDB: db,
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		var body *bytes.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			body = bytes.NewReader(b)
		} else {
			body = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, body)
		req.Header.Set("Authorization", "Bearer integration-token")
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	id := func(rec *httptest.ResponseRecorder) string {
		t.Helper()
		var decoded map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		v, _ := decoded["ID"].(string)
		if v == "" {
			t.Fatalf("missing ID in response %s", rec.Body.String())
		}
		return v
	}

	suffix := time.Now().Format("150405.000000")

	rec := do(http.MethodPost, "/products", map[string]any{
		"sku":        "INT-" + suffix,
		"name":       "Signet Ring",
		"metal":      "GOLD",
		"unit_price": 400,
		"currency":   "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", rec.Code, rec.Body.String())
	}
	productID := id(rec)

	rec = do(http.MethodPost, "/warehouses", map[string]any{
		"code": "INTWH" + time.Now().Format("150405"),
		"name": "Integration Vault",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create warehouse: %d %s", rec.Code, rec.Body.String())
	}
	warehouseID := id(rec)

	rec = do(http.MethodPost, "/stock-transactions", map[string]any{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"type":         "ADD",
		"quantity":     5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add stock: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodPost, "/customers", map[string]any{
		"first_name": "Inge",
		"last_name":  "Test",
		"email":      "inge-" + suffix + "@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: %d %s", rec.Code, rec.Body.String())
	}
	customerID := id(rec)

	rec = do(http.MethodPost, "/orders", map[string]any{
		"customer_id":  customerID,
		"warehouse_id": warehouseID,
		"items": []map[string]any{
			{"product_id": productID, "quantity": 2},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", rec.Code, rec.Body.String())
	}
	orderID := id(rec)

	if rec = do(http.MethodPost, "/orders/"+orderID+"/pay", nil); rec.Code != http.StatusOK {
		t.Fatalf("pay order: %d %s", rec.Code, rec.Body.String())
	}
	if rec = do(http.MethodPost, "/orders/"+orderID+"/fulfil", nil); rec.Code != http.StatusOK {
		t.Fatalf("fulfil order: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/inventory?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list levels: %d %s", rec.Code, rec.Body.String())
	}
	var levels []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &levels); err != nil {
		t.Fatalf("decode levels: %v", err)
	}
	if len(levels) != 1 || levels[0]["Quantity"].(float64) != 3 {
		t.Fatalf("unexpected levels %s", rec.Body.String())
	}

	// Audit entries should have been persisted along the way.
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gold_audit_entries`).Scan(&count); err != nil {
		t.Fatalf("count audit entries: %v", err)
	}
	if count == 0 {
		t.Fatal("expected persisted audit entries")
	}
}
