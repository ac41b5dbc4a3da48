package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"resepku/internal/recipe/model"
	"resepku/pkg/logger"
)

// RecipeRepository persists the global published namespace. The store owns
// created_at/updated_at; callers never supply timestamps.
type RecipeRepository struct {
	DB *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

// ListAll returns every published recipe, newest updated_at first.
func (r *RecipeRepository) ListAll() ([]model.Recipe, error) {
	rows, err := r.DB.Query(`SELECT id, body, created_at, updated_at FROM recipes ORDER BY updated_at DESC`)
	if err != nil {
		logger.Sugar.Errorf("Failed to list recipes: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanRecipes(rows)
}

func (r *RecipeRepository) GetByID(id string) (*model.Recipe, error) {
	var rec model.Recipe
	var body []byte
	err := r.DB.QueryRow(`SELECT id, body, created_at, updated_at FROM recipes WHERE id = $1`, id).
		Scan(&rec.ID, &body, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get recipe %s: %v", id, err)
		}
		return nil, err
	}
	rec.Body = json.RawMessage(body)
	return &rec, nil
}

func (r *RecipeRepository) Upsert(id string, body json.RawMessage) error {
	_, err := r.DB.Exec(`INSERT INTO recipes (id, body, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`, id, []byte(body))
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert recipe %s: %v", id, err)
	}
	return err
}

func (r *RecipeRepository) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete recipe %s: %v", id, err)
	}
	return err
}

// OwnerRecipeRepository persists the per-owner namespace. Identity is the
// (owner_id, id) pair; this namespace is never cached.
type OwnerRecipeRepository struct {
	DB *sql.DB
}

func NewOwnerRecipeRepository(db *sql.DB) *OwnerRecipeRepository {
	return &OwnerRecipeRepository{DB: db}
}

func (r *OwnerRecipeRepository) ListByOwner(ownerID string) ([]model.Recipe, error) {
	rows, err := r.DB.Query(`SELECT id, body, created_at, updated_at FROM owner_recipes WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list recipes for owner %s: %v", ownerID, err)
		return nil, err
	}
	defer rows.Close()
	return scanRecipes(rows)
}

func (r *OwnerRecipeRepository) Get(ownerID, id string) (*model.Recipe, error) {
	var rec model.Recipe
	var body []byte
	err := r.DB.QueryRow(`SELECT id, body, created_at, updated_at FROM owner_recipes WHERE owner_id = $1 AND id = $2`, ownerID, id).
		Scan(&rec.ID, &body, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get recipe %s for owner %s: %v", id, ownerID, err)
		}
		return nil, err
	}
	rec.Body = json.RawMessage(body)
	return &rec, nil
}

func (r *OwnerRecipeRepository) Upsert(ownerID, id string, body json.RawMessage) error {
	_, err := r.DB.Exec(`INSERT INTO owner_recipes (owner_id, id, body, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (owner_id, id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`, ownerID, id, []byte(body))
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert recipe %s for owner %s: %v", id, ownerID, err)
	}
	return err
}

// BulkUpsert writes all items in one transaction so a sync either lands
// completely or not at all.
func (r *OwnerRecipeRepository) BulkUpsert(ownerID string, items []model.SyncItem) error {
	tx, err := r.DB.Begin()
	if err != nil {
		logger.Sugar.Errorf("Failed to begin sync transaction for owner %s: %v", ownerID, err)
		return err
	}
	for _, item := range items {
		if _, err := tx.Exec(`INSERT INTO owner_recipes (owner_id, id, body, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (owner_id, id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`, ownerID, item.ID, []byte(item.Body)); err != nil {
			logger.Sugar.Errorf("Failed to sync recipe %s for owner %s: %v", item.ID, ownerID, err)
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *OwnerRecipeRepository) Delete(ownerID, id string) error {
	_, err := r.DB.Exec(`DELETE FROM owner_recipes WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete recipe %s for owner %s: %v", id, ownerID, err)
	}
	return err
}

func scanRecipes(rows *sql.Rows) ([]model.Recipe, error) {
	var recipes []model.Recipe
	for rows.Next() {
		var rec model.Recipe
		var body []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&rec.ID, &body, &createdAt, &updatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan recipe row: %v", err)
			return nil, err
		}
		rec.Body = json.RawMessage(body)
		rec.CreatedAt = createdAt
		rec.UpdatedAt = updatedAt
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}
