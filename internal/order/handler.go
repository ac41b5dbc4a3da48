package order

import (
	"encoding/json"
	"net/http"

	"resepku/pkg/logger"
)

type OrderHandler struct {
	Service *Service
}

func NewOrderHandler(service *Service) *OrderHandler {
	return &OrderHandler{Service: service}
}

type placeResponse struct {
	OK  bool   `json:"ok"`
	Ref string `json:"ref"`
}

// PlaceOrder serves POST /api/orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Customer == "" || len(req.Items) == 0 {
		http.Error(w, "Customer and items are required", http.StatusBadRequest)
		return
	}

	ref, err := h.Service.Place(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to relay order: %v", err)
		http.Error(w, "Order relay unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(placeResponse{OK: true, Ref: ref})
}
