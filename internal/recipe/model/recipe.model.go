package model

import (
	"encoding/json"
	"time"
)

// Recipe is one stored document. Body is opaque to the service layer; the
// only structure assumed anywhere is that a document can be addressed by ID.
type Recipe struct {
	ID        string          `json:"id"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SyncItem is one element of a bulk upsert into the owner-scoped namespace.
type SyncItem struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body"`
}

type SyncRequest struct {
	Recipes []SyncItem `json:"recipes"`
}

type WriteResponse struct {
	OK bool `json:"ok"`
}
