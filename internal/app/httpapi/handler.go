package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	app "github.com/gold360/backoffice/internal/app"
	"github.com/gold360/backoffice/internal/app/auth"
	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	"github.com/gold360/backoffice/internal/app/metrics"
	inventorysvc "github.com/gold360/backoffice/internal/app/services/inventory"
	loyaltysvc "github.com/gold360/backoffice/internal/app/services/loyalty"
	orderssvc "github.com/gold360/backoffice/internal/app/services/orders"
	transferssvc "github.com/gold360/backoffice/internal/app/services/transfers"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	auth  *auth.Manager
	audit *auditLog
}

// NewHandler returns a mux exposing the back-office REST API.
func NewHandler(application *app.Application, authMgr *auth.Manager, audit *auditLog) http.Handler {
	h := &handler{app: application, auth: authMgr, audit: audit}
	mux := http.NewServeMux()
	mux.HandleFunc("/products", h.products)
	mux.HandleFunc("/products/", h.productResources)
	mux.HandleFunc("/warehouses", h.warehouses)
	mux.HandleFunc("/warehouses/", h.warehouseResources)
	mux.HandleFunc("/customers", h.customers)
	mux.HandleFunc("/customers/", h.customerResources)
	mux.HandleFunc("/inventory", h.inventoryLevels)
	mux.HandleFunc("/inventory/low", h.inventoryLow)
	mux.HandleFunc("/inventory/reorder-point", h.inventoryReorderPoint)
	mux.HandleFunc("/stock-transactions", h.stockTransactions)
	mux.HandleFunc("/orders", h.orders)
	mux.HandleFunc("/orders/", h.orderResources)
	mux.HandleFunc("/transfers", h.transfers)
	mux.HandleFunc("/transfers/", h.transferResources)
	mux.HandleFunc("/shipments", h.shipments)
	mux.HandleFunc("/shipments/", h.shipmentResources)
	mux.HandleFunc("/loyalty/program", h.loyaltyProgram)
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/healthz", h.healthz)
	mux.HandleFunc("/audit", h.auditEntries)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			SKU         string  `json:"sku"`
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Category    string  `json:"category"`
			Metal       string  `json:"metal"`
			PurityKarat int     `json:"purity_karat"`
			WeightGrams float64 `json:"weight_grams"`
			UnitPrice   float64 `json:"unit_price"`
			Currency    string  `json:"currency"`
			Barcode     string  `json:"barcode"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Catalog.Create(r.Context(), product.Product{
			SKU:         payload.SKU,
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Metal:       product.Metal(payload.Metal),
			PurityKarat: payload.PurityKarat,
			WeightGrams: payload.WeightGrams,
			UnitPrice:   payload.UnitPrice,
			Currency:    payload.Currency,
			Barcode:     payload.Barcode,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		if sku := strings.TrimSpace(r.URL.Query().Get("sku")); sku != "" {
			p, err := h.app.Catalog.GetBySKU(r.Context(), sku)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		products, err := h.app.Catalog.List(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, products)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) productResources(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/products")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.app.Catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPatch:
		var payload struct {
			Name        *string  `json:"name"`
			Description *string  `json:"description"`
			Category    *string  `json:"category"`
			Barcode     *string  `json:"barcode"`
			Currency    *string  `json:"currency"`
			PurityKarat *int     `json:"purity_karat"`
			WeightGrams *float64 `json:"weight_grams"`
			UnitPrice   *float64 `json:"unit_price"`
			Active      *bool    `json:"active"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		updated, err := h.app.Catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if payload.Name != nil || payload.Description != nil || payload.Category != nil ||
			payload.Barcode != nil || payload.Currency != nil || payload.PurityKarat != nil ||
			payload.WeightGrams != nil || payload.UnitPrice != nil {
			updated, err = h.app.Catalog.Update(r.Context(), id, payload.Name, payload.Description, payload.Category, payload.Barcode, payload.Currency, payload.PurityKarat, payload.WeightGrams, payload.UnitPrice)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		if payload.Active != nil {
			updated, err = h.app.Catalog.SetActive(r.Context(), id, *payload.Active)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.app.Catalog.Delete(r.Context(), id); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeError(w, status, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) warehouses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Code    string `json:"code"`
			Name    string `json:"name"`
			Address string `json:"address"`
			City    string `json:"city"`
			Country string `json:"country"`
			Phone   string `json:"phone"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Warehouses.Create(r.Context(), warehouse.Warehouse{
			Code:    payload.Code,
			Name:    payload.Name,
			Address: payload.Address,
			City:    payload.City,
			Country: payload.Country,
			Phone:   payload.Phone,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		if code := strings.TrimSpace(r.URL.Query().Get("code")); code != "" {
			wh, err := h.app.Warehouses.GetByCode(r.Context(), code)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, wh)
			return
		}
		list, err := h.app.Warehouses.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) warehouseResources(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/warehouses")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		wh, err := h.app.Warehouses.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, wh)

	case http.MethodPatch:
		var payload struct {
			Name    *string `json:"name"`
			Address *string `json:"address"`
			City    *string `json:"city"`
			Country *string `json:"country"`
			Phone   *string `json:"phone"`
			Active  *bool   `json:"active"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		updated, err := h.app.Warehouses.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if payload.Name != nil || payload.Address != nil || payload.City != nil || payload.Country != nil || payload.Phone != nil {
			updated, err = h.app.Warehouses.Update(r.Context(), id, payload.Name, payload.Address, payload.City, payload.Country, payload.Phone)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		if payload.Active != nil {
			updated, err = h.app.Warehouses.SetActive(r.Context(), id, *payload.Active)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.app.Warehouses.Delete(r.Context(), id); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeError(w, status, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) customers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
			Address   string `json:"address"`
			City      string `json:"city"`
			Country   string `json:"country"`
			Birthday  string `json:"birthday"`
			Note      string `json:"note"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var birthday time.Time
		if strings.TrimSpace(payload.Birthday) != "" {
			parsed, err := time.Parse("2006-01-02", strings.TrimSpace(payload.Birthday))
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("birthday must be YYYY-MM-DD"))
				return
			}
			birthday = parsed
		}

		created, err := h.app.Customers.Create(r.Context(), customer.Customer{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Address:   payload.Address,
			City:      payload.City,
			Country:   payload.Country,
			Birthday:  birthday,
			Note:      payload.Note,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
			c, err := h.app.Customers.GetByEmail(r.Context(), email)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
			return
		}
		list, err := h.app.Customers.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) customerResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/customers"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	customerID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			c, err := h.app.Customers.Get(r.Context(), customerID)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
		case http.MethodPatch:
			h.patchCustomer(w, r, customerID)
		case http.MethodDelete:
			if err := h.app.Customers.Delete(r.Context(), customerID); err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, sql.ErrNoRows) {
					status = http.StatusNotFound
				}
				writeError(w, status, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if parts[1] != "loyalty" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.customerLoyalty(w, r, customerID, parts[2:])
}

func (h *handler) patchCustomer(w http.ResponseWriter, r *http.Request, customerID string) {
	var payload struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Address   *string `json:"address"`
		City      *string `json:"city"`
		Country   *string `json:"country"`
		Note      *string `json:"note"`
		Birthday  *string `json:"birthday"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var birthday *time.Time
	if payload.Birthday != nil {
		trimmed := strings.TrimSpace(*payload.Birthday)
		if trimmed == "" {
			zero := time.Time{}
			birthday = &zero
		} else {
			parsed, err := time.Parse("2006-01-02", trimmed)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("birthday must be YYYY-MM-DD"))
				return
			}
			birthday = &parsed
		}
	}

	updated, err := h.app.Customers.Update(r.Context(), customerID, payload.FirstName, payload.LastName, payload.Email, payload.Phone, payload.Address, payload.City, payload.Country, payload.Note, birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) customerLoyalty(w http.ResponseWriter, r *http.Request, customerID string, rest []string) {
	if len(rest) == 0 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := h.app.Customers.Get(r.Context(), customerID); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		balance, err := h.app.Loyalty.Balance(r.Context(), customerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
		return
	}

	switch rest[0] {
	case "history":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		entries, err := h.app.Loyalty.History(r.Context(), customerID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case "redeem":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			Points    int    `json:"points"`
			Reference string `json:"reference"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := h.app.Loyalty.Redeem(r.Context(), customerID, payload.Points, payload.Reference)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, loyaltysvc.ErrInsufficientPoints) {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	case "adjust":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			Points    int    `json:"points"`
			Reference string `json:"reference"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := h.app.Loyalty.Adjust(r.Context(), customerID, payload.Points, payload.Reference)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, loyaltysvc.ErrInsufficientPoints) {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) inventoryLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	levels, err := h.app.Inventory.ListLevels(r.Context(), r.URL.Query().Get("product_id"), r.URL.Query().Get("warehouse_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *handler) inventoryLow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	levels, err := h.app.Inventory.ListBelowReorder(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *handler) inventoryReorderPoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		ProductID    string `json:"product_id"`
		WarehouseID  string `json:"warehouse_id"`
		ReorderPoint int    `json:"reorder_point"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lvl, err := h.app.Inventory.SetReorderPoint(r.Context(), payload.ProductID, payload.WarehouseID, payload.ReorderPoint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}

func (h *handler) stockTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			ProductID   string `json:"product_id"`
			WarehouseID string `json:"warehouse_id"`
			Type        string `json:"type"`
			Quantity    int    `json:"quantity"`
			Reference   string `json:"reference"`
			Note        string `json:"note"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		tx, err := h.app.Inventory.RecordTransaction(r.Context(), inventory.StockTransaction{
			ProductID:   payload.ProductID,
			WarehouseID: payload.WarehouseID,
			Type:        inventory.TransactionType(strings.ToUpper(strings.TrimSpace(payload.Type))),
			Quantity:    payload.Quantity,
			Reference:   payload.Reference,
			Note:        payload.Note,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, inventorysvc.ErrInsufficientStock) {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)

	case http.MethodGet:
		txs, err := h.app.Inventory.ListTransactions(r.Context(), r.URL.Query().Get("product_id"), r.URL.Query().Get("warehouse_id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, txs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			CustomerID  string  `json:"customer_id"`
			WarehouseID string  `json:"warehouse_id"`
			Discount    float64 `json:"discount"`
			Note        string  `json:"note"`
			Items       []struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			} `json:"items"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		lines := make([]orderssvc.Line, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, orderssvc.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		created, err := h.app.Orders.Create(r.Context(), payload.CustomerID, payload.WarehouseID, lines, payload.Discount, payload.Note)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, inventorysvc.ErrInsufficientStock) {
				status = http.StatusConflict
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Orders.List(r.Context(), r.URL.Query().Get("customer_id"), order.Status(strings.ToUpper(r.URL.Query().Get("status"))))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) orderResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	orderID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		o, err := h.app.Orders.Get(r.Context(), orderID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var (
		o   order.Order
		err error
	)
	switch parts[1] {
	case "pay":
		o, err = h.app.Orders.MarkPaid(r.Context(), orderID)
	case "fulfil":
		o, err = h.app.Orders.Fulfil(r.Context(), orderID)
	case "cancel":
		o, err = h.app.Orders.Cancel(r.Context(), orderID)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventorysvc.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *handler) transfers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Code          string `json:"code"`
			SourceID      string `json:"source_id"`
			DestinationID string `json:"destination_id"`
			Note          string `json:"note"`
			Items         []struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			} `json:"items"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		lines := make([]transferssvc.Line, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, transferssvc.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		created, err := h.app.Transfers.Create(r.Context(), payload.Code, payload.SourceID, payload.DestinationID, lines, payload.Note)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Transfers.List(r.Context(), r.URL.Query().Get("warehouse_id"), transfer.Status(strings.ToUpper(r.URL.Query().Get("status"))))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) transferResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transfers"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	transferID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		t, err := h.app.Transfers.Get(r.Context(), transferID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var (
		t   transfer.Transfer
		err error
	)
	switch parts[1] {
	case "dispatch":
		t, err = h.app.Transfers.Dispatch(r.Context(), transferID)
	case "receive":
		var payload struct {
			Items []struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			} `json:"items"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receipts := make([]transferssvc.Receipt, 0, len(payload.Items))
		for _, item := range payload.Items {
			receipts = append(receipts, transferssvc.Receipt{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		t, err = h.app.Transfers.Receive(r.Context(), transferID, receipts)
	case "cancel":
		t, err = h.app.Transfers.Cancel(r.Context(), transferID)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventorysvc.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) shipments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			OrderID        string `json:"order_id"`
			TransferID     string `json:"transfer_id"`
			Carrier        string `json:"carrier"`
			TrackingNumber string `json:"tracking_number"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Shipments.Create(r.Context(), payload.OrderID, payload.TransferID, payload.Carrier, payload.TrackingNumber)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		if tracking := strings.TrimSpace(r.URL.Query().Get("tracking_number")); tracking != "" {
			sh, err := h.app.Shipments.GetByTracking(r.Context(), tracking)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, sh)
			return
		}
		list, err := h.app.Shipments.List(r.Context(), r.URL.Query().Get("order_id"), r.URL.Query().Get("transfer_id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) shipmentResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/shipments"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	shipmentID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sh, err := h.app.Shipments.Get(r.Context(), shipmentID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, sh)
		return
	}

	if len(parts) != 2 || parts[1] != "events" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		events, err := h.app.Shipments.ListEvents(r.Context(), shipmentID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		var payload struct {
			Status     string `json:"status"`
			Location   string `json:"location"`
			Note       string `json:"note"`
			OccurredAt string `json:"occurred_at"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var occurredAt time.Time
		if strings.TrimSpace(payload.OccurredAt) != "" {
			parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(payload.OccurredAt))
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("occurred_at must be RFC3339 timestamp"))
				return
			}
			occurredAt = parsed
		}

		ev, err := h.app.Shipments.AddEvent(r.Context(), shipmentID, shipment.Status(strings.ToUpper(strings.TrimSpace(payload.Status))), payload.Location, payload.Note, occurredAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) loyaltyProgram(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		program, err := h.app.Loyalty.Program(r.Context())
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, program)

	case http.MethodPut:
		var payload struct {
			Name         string  `json:"name"`
			EarnRate     float64 `json:"earn_rate"`
			RedeemRate   float64 `json:"redeem_rate"`
			ExpiryMonths int     `json:"expiry_months"`
			Active       bool    `json:"active"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		program, err := h.app.Loyalty.ConfigureProgram(r.Context(), payload.Name, payload.EarnRate, payload.RedeemRate, payload.ExpiryMonths, payload.Active)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, program)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.auth == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("login not configured"))
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.auth.Login(payload.Username, payload.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) auditEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.audit == nil {
		writeJSON(w, http.StatusOK, []auditEntry{})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be an integer"))
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func resourceID(path, prefix string) string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return ""
	}
	return trimmed
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
