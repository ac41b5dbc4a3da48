package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"resepku/pkg/logger"
)

type AuthHandler struct {
	Verifier WidgetVerifier
	Issuer   TokenIssuer
	Owners   *OwnerRepository
}

func NewAuthHandler(verifier WidgetVerifier, issuer TokenIssuer, owners *OwnerRepository) *AuthHandler {
	return &AuthHandler{Verifier: verifier, Issuer: issuer, Owners: owners}
}

type loginResponse struct {
	Token string       `json:"token"`
	Owner ownerProfile `json:"owner"`
}

type ownerProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// TelegramLogin serves POST /api/auth/telegram. The body is the widget
// payload as Telegram delivers it; the signature covers the exact fields
// sent, so they are collected as raw strings before any typed parsing.
func (h *AuthHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		}
	}

	if err := h.Verifier.Verify(fields); err != nil {
		logger.Sugar.Infof("Rejected telegram login: %v", err)
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	tgID, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil || tgID == 0 {
		http.Error(w, "Invalid telegram id", http.StatusBadRequest)
		return
	}
	authDate, _ := strconv.ParseInt(fields["auth_date"], 10, 64)
	user := TelegramUser{
		ID:        tgID,
		FirstName: fields["first_name"],
		Username:  fields["username"],
		PhotoURL:  fields["photo_url"],
		AuthDate:  authDate,
	}

	ownerID, err := h.Owners.UpsertTelegram(user)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	token, err := h.Issuer.Issue(ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to issue session token for owner %s: %v", ownerID, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		Token: token,
		Owner: ownerProfile{
			ID:        ownerID,
			FirstName: user.FirstName,
			Username:  user.Username,
			PhotoURL:  user.PhotoURL,
		},
	})
}
