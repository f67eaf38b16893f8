package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/gold360/backoffice/internal/app"
	"github.com/gold360/backoffice/internal/app/auth"
)

const testAuthToken = "test-token"

func newTestHandler(t *testing.T) (http.Handler, *app.Application) {
	t.Helper()
	application, err := app.New(app.Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("start application: %v", err)
	}
	t.Cleanup(func() { _ = application.Stop(context.Background()) })

	handler := wrapWithAuth(NewHandler(application, nil, nil), []string{testAuthToken}, nil)
	return handler, application
}

func TestHandlerLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t)

	// Catalog and warehouse setup.
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/products", marshal(map[string]any{
		"sku":          "au-ring-001",
		"name":         "Classic Gold Ring",
		"metal":        "GOLD",
		"purity_karat": 18,
		"weight_grams": 4.2,
		"unit_price":   950.0,
		"category":     "rings",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var productBody map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &productBody); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}
	productID := productBody["ID"].(string)
	if productBody["SKU"].(string) != "AU-RING-001" {
		t.Fatalf("expected normalized SKU, got %v", productBody["SKU"])
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/warehouses", marshal(map[string]any{
		"code": "IST-01",
		"name": "Istanbul Flagship",
		"city": "Istanbul",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create warehouse: expected 201, got %d", resp.Code)
	}
	warehouseID := unmarshalID(t, resp.Body.Bytes())

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/customers", marshal(map[string]any{
		"first_name": "Ayse",
		"last_name":  "Demir",
		"email":      "ayse@example.com",
		"birthday":   "1990-03-14",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	customerID := unmarshalID(t, resp.Body.Bytes())

	// Loyalty program.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPut, "/loyalty/program", marshal(map[string]any{
		"name":          "Gold Club",
		"earn_rate":     0.1,
		"redeem_rate":   0.05,
		"expiry_months": 12,
		"active":        true,
	})))
	if resp.Code != http.StatusOK {
		t.Fatalf("configure program: expected 200, got %d", resp.Code)
	}

	// Stock intake.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/stock-transactions", marshal(map[string]any{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"type":         "ADD",
		"quantity":     10,
		"reference":    "grn:1",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add stock: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/inventory?warehouse_id="+warehouseID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list levels: expected 200, got %d", resp.Code)
	}
	var levels []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &levels); err != nil {
		t.Fatalf("unmarshal levels: %v", err)
	}
	if len(levels) != 1 || levels[0]["Quantity"].(float64) != 10 {
		t.Fatalf("unexpected levels: %+v", levels)
	}

	// Order lifecycle.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/orders", marshal(map[string]any{
		"customer_id":  customerID,
		"warehouse_id": warehouseID,
		"items":        []map[string]any{{"product_id": productID, "quantity": 2}},
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	orderID := unmarshalID(t, resp.Body.Bytes())

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/orders/"+orderID+"/pay", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("pay order: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/orders/"+orderID+"/fulfil", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("fulfil order: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Loyalty accrued on fulfilment: floor(1900 * 0.1) = 190.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/customers/"+customerID+"/loyalty", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("loyalty balance: expected 200, got %d", resp.Code)
	}
	var balance map[string]int
	if err := json.Unmarshal(resp.Body.Bytes(), &balance); err != nil {
		t.Fatalf("unmarshal balance: %v", err)
	}
	if balance["balance"] != 190 {
		t.Fatalf("expected balance 190, got %d", balance["balance"])
	}

	// Redeem a slice of the points.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/customers/"+customerID+"/loyalty/redeem", marshal(map[string]any{
		"points":    50,
		"reference": "order:" + orderID,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("redeem: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// Shipment for the order.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/shipments", marshal(map[string]any{
		"order_id":        orderID,
		"carrier":         "UPS",
		"tracking_number": "1Z999AA10123456784",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create shipment: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	shipmentID := unmarshalID(t, resp.Body.Bytes())

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/shipments/"+shipmentID+"/events", marshal(map[string]any{
		"status":      "IN_TRANSIT",
		"location":    "Istanbul hub",
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add shipment event: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/shipments?tracking_number=1Z999AA10123456784", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("get by tracking: expected 200, got %d", resp.Code)
	}

	// Stock after fulfilment.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/inventory?product_id="+productID, nil))
	if err := json.Unmarshal(resp.Body.Bytes(), &levels); err != nil {
		t.Fatalf("unmarshal levels: %v", err)
	}
	if len(levels) != 1 || levels[0]["Quantity"].(float64) != 8 {
		t.Fatalf("expected 8 on hand after fulfilment, got %+v", levels)
	}
}

func TestTransferEndpoints(t *testing.T) {
	handler, _ := newTestHandler(t)

	productID := createProduct(t, handler, "AU-001")
	source := createWarehouse(t, handler, "IST-01")
	destination := createWarehouse(t, handler, "ANK-01")
	addStock(t, handler, productID, source, 20)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/transfers", marshal(map[string]any{
		"code":           "TR-1",
		"source_id":      source,
		"destination_id": destination,
		"items":          []map[string]any{{"product_id": productID, "quantity": 8}},
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create transfer: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	transferID := unmarshalID(t, resp.Body.Bytes())

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/transfers/"+transferID+"/dispatch", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("dispatch: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/transfers/"+transferID+"/receive", marshal(map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 6}},
	})))
	if resp.Code != http.StatusOK {
		t.Fatalf("receive: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var tr map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &tr); err != nil {
		t.Fatalf("unmarshal transfer: %v", err)
	}
	if tr["Status"].(string) != "COMPLETED" {
		t.Fatalf("expected COMPLETED, got %v", tr["Status"])
	}

	// Oversubscribed transfers are a conflict.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/transfers", marshal(map[string]any{
		"code":           "TR-2",
		"source_id":      source,
		"destination_id": destination,
		"items":          []map[string]any{{"product_id": productID, "quantity": 100}},
	})))
	transferID = unmarshalID(t, resp.Body.Bytes())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/transfers/"+transferID+"/dispatch", nil))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on dispatch without stock, got %d", resp.Code)
	}
}

func TestHandlerAuthRequired(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	// Health stays open.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthz, got %d", resp.Code)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	application, err := app.New(app.Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	manager, err := auth.NewManager("test-secret", time.Hour, []auth.User{{Username: "admin", Password: "s3cret", Role: "admin"}})
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	handler := wrapWithAuth(NewHandler(application, manager, nil), nil, manager)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(marshal(map[string]any{
		"username": "admin",
		"password": "s3cret",
	}))))
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+body["token"])
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected JWT to grant access, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(marshal(map[string]any{
		"username": "admin",
		"password": "wrong",
	}))))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad login, got %d", resp.Code)
	}
}

func TestAuditEndpointRecordsRequests(t *testing.T) {
	application, err := app.New(app.Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	audit := newAuditLog(10, nil)
	handler := wrapWithAudit(wrapWithAuth(NewHandler(application, nil, audit), []string{testAuthToken}, nil), audit)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/products", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/audit?limit=5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("audit: expected 200, got %d", resp.Code)
	}
	var entries []auditEntry
	if err := json.Unmarshal(resp.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal audit: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected audit entries to be recorded")
	}
	if entries[0].Path != "/products" || entries[0].Method != http.MethodGet {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func createProduct(t *testing.T, handler http.Handler, sku string) string {
	t.Helper()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/products", marshal(map[string]any{
		"sku":        sku,
		"name":       "Item " + sku,
		"metal":      "GOLD",
		"unit_price": 100.0,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create product %s: got %d: %s", sku, resp.Code, resp.Body.String())
	}
	return unmarshalID(t, resp.Body.Bytes())
}

func createWarehouse(t *testing.T, handler http.Handler, code string) string {
	t.Helper()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/warehouses", marshal(map[string]any{
		"code": code,
		"name": "Warehouse " + code,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create warehouse %s: got %d: %s", code, resp.Code, resp.Body.String())
	}
	return unmarshalID(t, resp.Body.Bytes())
}

func addStock(t *testing.T, handler http.Handler, productID, warehouseID string, quantity int) {
	t.Helper()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/stock-transactions", marshal(map[string]any{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"type":         "ADD",
		"quantity":     quantity,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add stock: got %d: %s", resp.Code, resp.Body.String())
	}
}

func unmarshalID(t *testing.T, body []byte) string {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	id, ok := decoded["ID"].(string)
	if !ok || id == "" {
		t.Fatalf("missing ID in body: %s", string(body))
	}
	return id
}

func authedRequest(method, url string, body []byte) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+testAuthToken)
	return req
}

func marshal(v any) []byte {
	buf, _ := json.Marshal(v)
	return buf
}
