package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resepku/internal/cache"
	"resepku/internal/recipe/model"
	"resepku/internal/recipe/repository"
)

const listQuery = `SELECT id, body, created_at, updated_at FROM recipes ORDER BY updated_at DESC`

func newTestService(t *testing.T, window time.Duration) (*RecipeService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecipeService(repository.NewRecipeRepository(db), cache.NewListing(window)), mock
}

// A mutation that bypasses invalidation (an external writer) becomes visible
// once the freshness window has elapsed.
func TestFreshnessWindowBoundsStaleness(t *testing.T) {
	svc, mock := newTestService(t, 20*time.Millisecond)

	before := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "body", "created_at", "updated_at"}).
			AddRow("a", []byte(`{"title":"Soto"}`), before, before))

	first, err := svc.ListPublished("")
	require.NoError(t, err)

	// Within the window the stale snapshot is served; past it the next read
	// recomputes and observes the external write.
	after := before.Add(time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "body", "created_at", "updated_at"}).
			AddRow("b", []byte(`{"title":"Rawon"}`), after, after).
			AddRow("a", []byte(`{"title":"Soto"}`), before, before))

	time.Sleep(30 * time.Millisecond)

	second, err := svc.ListPublished("")
	require.NoError(t, err)
	assert.NotEqual(t, first.ETag, second.ETag)
	assert.Contains(t, second.Body, `"id":"b"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildListingProjectsIDIntoBody(t *testing.T) {
	updated := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	recipes := []model.Recipe{
		{ID: "a", Body: json.RawMessage(`{"title":"Soto","servings":4}`), UpdatedAt: updated},
		{ID: "b", Body: json.RawMessage(`{"title":"Rendang"}`), UpdatedAt: updated.Add(-time.Hour)},
	}

	body, etag, lastModified, err := buildListing(recipes, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"a","title":"Soto","servings":4},{"id":"b","title":"Rendang"}]`,
		body)
	assert.Equal(t, fmt.Sprintf("\"r2-%d\"", updated.UnixMilli()), etag)
	assert.Equal(t, updated.Format(http.TimeFormat), lastModified)
}

// Documents are opaque: non-object payloads survive under a "body" key
// instead of failing the listing.
func TestBuildListingNonObjectBody(t *testing.T) {
	updated := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	recipes := []model.Recipe{
		{ID: "a", Body: json.RawMessage(`["step one","step two"]`), UpdatedAt: updated},
		{ID: "b", Body: json.RawMessage(`42`), UpdatedAt: updated},
	}

	body, _, _, err := buildListing(recipes, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"a","body":["step one","step two"]},{"id":"b","body":42}]`,
		body)
}

func TestBuildListingEmptyStoreUsesCurrentTime(t *testing.T) {
	now := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	body, etag, lastModified, err := buildListing(nil, now)
	require.NoError(t, err)
	assert.Equal(t, "[]", body)
	assert.Equal(t, fmt.Sprintf("\"r0-%d\"", now.UnixMilli()), etag)
	assert.Equal(t, now.Format(http.TimeFormat), lastModified)
}

func TestBuildListingIDWinsOverBodyID(t *testing.T) {
	recipes := []model.Recipe{
		{ID: "canonical", Body: json.RawMessage(`{"id":"spoofed","title":"Soto"}`), UpdatedAt: time.Now()},
	}
	body, _, _, err := buildListing(recipes, time.Now())
	require.NoError(t, err)
	assert.Contains(t, body, `"id":"canonical"`)
	assert.NotContains(t, body, "spoofed")
}
