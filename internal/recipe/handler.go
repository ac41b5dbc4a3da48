package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"

	"resepku/internal/recipe/model"
	"resepku/internal/recipe/service"
	"resepku/middleware"
	"resepku/pkg/logger"
)

type RecipeHandler struct {
	Published *service.RecipeService
	Owned     *service.OwnerRecipeService
}

func NewRecipeHandler(published *service.RecipeService, owned *service.OwnerRecipeService) *RecipeHandler {
	return &RecipeHandler{Published: published, Owned: owned}
}

// ListPublished serves GET /api/recipes with conditional-request support. A
// malformed or absent If-None-Match header simply falls through to the full
// body; it is never an error.
func (h *RecipeHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Published.ListPublished(r.Header.Get("If-None-Match"))
	if err != nil {
		logger.Sugar.Errorf("Error listing published recipes: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", listing.ETag)
	w.Header().Set("Last-Modified", listing.LastModified)
	w.Header().Set("Cache-Control", service.CachePolicy)

	if listing.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(listing.Body))
}

func (h *RecipeHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := h.Published.GetPublished(id)
	if err == sql.ErrNoRows {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Error fetching recipe %s: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Publish serves PUT /api/recipes/{id}. The request body is the opaque
// recipe document itself.
func (h *RecipeHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Published.Publish(id, json.RawMessage(body)); err != nil {
		logger.Sugar.Errorf("Handler: Failed to publish recipe %s: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.WriteResponse{OK: true})
}

func (h *RecipeHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Published.Unpublish(id); err != nil {
		logger.Sugar.Errorf("Handler: Failed to unpublish recipe %s: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)
	recipes, err := h.Owned.List(ownerID)
	if err != nil {
		logger.Sugar.Errorf("Error listing recipes for owner %s: %v", ownerID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipes)
}

func (h *RecipeHandler) GetOwned(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)
	id := r.PathValue("id")
	rec, err := h.Owned.Get(ownerID, id)
	if err == sql.ErrNoRows {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Error fetching recipe %s for owner %s: %v", id, ownerID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (h *RecipeHandler) SaveOwned(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)
	id := r.PathValue("id")
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Owned.Save(ownerID, id, json.RawMessage(body)); err != nil {
		logger.Sugar.Errorf("Handler: Failed to save recipe %s for owner %s: %v", id, ownerID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.WriteResponse{OK: true})
}

// SyncOwned serves POST /api/my/recipes/sync, a bulk upsert of the caller's
// local collection.
func (h *RecipeHandler) SyncOwned(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)

	var req model.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Recipes) == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	for _, item := range req.Recipes {
		if item.ID == "" || !json.Valid(item.Body) {
			http.Error(w, "Every recipe needs an id and a valid body", http.StatusBadRequest)
			return
		}
	}

	if err := h.Owned.Sync(ownerID, req.Recipes); err != nil {
		logger.Sugar.Errorf("Handler: Failed to sync recipes for owner %s: %v", ownerID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.WriteResponse{OK: true})
}

func (h *RecipeHandler) RemoveOwned(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)
	id := r.PathValue("id")
	if err := h.Owned.Remove(ownerID, id); err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete recipe %s for owner %s: %v", id, ownerID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
