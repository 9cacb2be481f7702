package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/store"
	"github.com/snapreward/apiserver/types"
)

// CustomerHandler provides HTTP handlers for the contact list.
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler constructs a handler with the provided service.
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRouter registers customer routes on the given router. All
// routes are admin-only.
func CustomerRouter(r chi.Router, customerService *services.CustomerService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCustomerHandler(customerService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListCustomers)
	r.Post("/", handler.CreateCustomer)
	r.Post("/bulk", handler.BulkImport)
	r.Put("/{customerID}", handler.UpdateCustomer)
	r.Delete("/{customerID}", handler.DeleteCustomer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch customers")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input types.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := validateCustomerInput(&input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customerService.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "customer with this phone number already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// BulkImport upserts a batch of contacts by phone number. Every
// element is re-validated here regardless of what the caller filtered.
func (h *CustomerHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req BulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if len(req.Customers) == 0 {
		writeError(w, http.StatusBadRequest, "customers array is required")
		return
	}
	for i := range req.Customers {
		if err := validateCustomerInput(&req.Customers[i]); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	customers, err := h.customerService.BulkImport(r.Context(), req.Customers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to import customers")
		return
	}

	writeJSON(w, http.StatusCreated, BulkImportResponse{
		Message:   fmt.Sprintf("Successfully processed %d customers", len(customers)),
		Count:     len(customers),
		Customers: customers,
	})
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var patch services.CustomerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "customer not found")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "customer with this phone number already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update customer")
		}
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type BulkImportRequest struct {
	Customers []types.CustomerInput `json:"customers"`
}

type BulkImportResponse struct {
	Message   string           `json:"message"`
	Count     int              `json:"count"`
	Customers []types.Customer `json:"customers"`
}

func validateCustomerInput(input *types.CustomerInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Phone == "" {
		return errors.New("name and phone are required")
	}
	return nil
}
