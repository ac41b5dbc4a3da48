package auth

import (
	"database/sql"

	"resepku/pkg/logger"

	"github.com/google/uuid"
)

// OwnerRepository persists the one-way Telegram -> owner binding.
type OwnerRepository struct {
	DB *sql.DB
}

func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{DB: db}
}

// UpsertTelegram inserts a new owner for an unseen telegram_id or refreshes
// the profile fields of an existing one, returning the internal owner id
// either way.
func (r *OwnerRepository) UpsertTelegram(u TelegramUser) (string, error) {
	var ownerID string
	err := r.DB.QueryRow(`INSERT INTO owners (id, telegram_id, first_name, username, photo_url, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE SET first_name = $3, username = $4, photo_url = $5, last_login_at = NOW()
		RETURNING id`,
		uuid.NewString(), u.ID, u.FirstName, u.Username, u.PhotoURL).Scan(&ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert owner for telegram id %d: %v", u.ID, err)
	}
	return ownerID, err
}
