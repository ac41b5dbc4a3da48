package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

// signFields computes the widget hash the way Telegram does, so tests
// exercise the verifier against a faithfully signed payload.
func signFields(botToken string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func validFields(authDate time.Time) map[string]string {
	fields := map[string]string{
		"id":         "987654321",
		"first_name": "Siti",
		"username":   "sitimasak",
		"photo_url":  "https://t.me/i/userpic/320/sitimasak.jpg",
		"auth_date":  strconv.FormatInt(authDate.Unix(), 10),
	}
	fields["hash"] = signFields(testBotToken, fields)
	return fields
}

func TestVerifyAcceptsSignedPayload(t *testing.T) {
	v := WidgetVerifier{BotToken: testBotToken, MaxAge: 24 * time.Hour}
	assert.NoError(t, v.Verify(validFields(time.Now())))
}

func TestVerifyRejectsTamperedField(t *testing.T) {
	v := WidgetVerifier{BotToken: testBotToken, MaxAge: 24 * time.Hour}
	fields := validFields(time.Now())
	fields["id"] = "111111"
	assert.ErrorIs(t, v.Verify(fields), ErrBadSignature)
}

func TestVerifyRejectsMissingHash(t *testing.T) {
	v := WidgetVerifier{BotToken: testBotToken}
	fields := validFields(time.Now())
	delete(fields, "hash")
	assert.ErrorIs(t, v.Verify(fields), ErrBadSignature)
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	v := WidgetVerifier{BotToken: "999999:OTHER-TOKEN"}
	assert.ErrorIs(t, v.Verify(validFields(time.Now())), ErrBadSignature)
}

func TestVerifyRejectsStaleLogin(t *testing.T) {
	v := WidgetVerifier{BotToken: testBotToken, MaxAge: 24 * time.Hour}
	fields := validFields(time.Now().Add(-25 * time.Hour))
	assert.ErrorIs(t, v.Verify(fields), ErrStaleLogin)
}

func TestVerifySignatureCoversExactFieldSet(t *testing.T) {
	v := WidgetVerifier{BotToken: testBotToken, MaxAge: 24 * time.Hour}
	fields := validFields(time.Now())
	// An extra unsigned field must break verification.
	fields["last_name"] = "Rahma"
	assert.ErrorIs(t, v.Verify(fields), ErrBadSignature)
}

func TestIssueRoundTrip(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}
	signed, err := issuer.Issue("owner-42")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		require.True(t, ok)
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "owner-42", sub)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestIssueRejectedBySecretMismatch(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}
	signed, err := issuer.Issue("owner-42")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("different-secret"), nil
	})
	assert.Error(t, err)
}
