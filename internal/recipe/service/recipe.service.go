package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resepku/internal/cache"
	"resepku/internal/recipe/model"
	"resepku/internal/recipe/repository"
)

// CachePolicy is the fixed Cache-Control value for the published listing.
const CachePolicy = "public, max-age=30, stale-while-revalidate=300"

// Listing is the outcome of a conditional list request. When NotModified is
// set the body is empty and the transport answers 304.
type Listing struct {
	Body         string
	ETag         string
	LastModified string
	NotModified  bool
}

// RecipeService serves the global published namespace through the single
// listing cache. Every write goes store first, then invalidation, so a client
// that observed its own write response can never read the pre-write listing.
type RecipeService struct {
	Repo  *repository.RecipeRepository
	Cache *cache.Listing

	// Now is swappable in tests; it stamps the ETag of an empty store.
	Now func() time.Time
}

func NewRecipeService(repo *repository.RecipeRepository, listing *cache.Listing) *RecipeService {
	return &RecipeService{Repo: repo, Cache: listing, Now: time.Now}
}

// ListPublished answers a list request carrying an optional If-None-Match
// token. A fresh cache entry is served as-is; otherwise the listing is
// recomputed from the store and the cache entry replaced before the client
// token is compared, so an up-to-date token earns a 304 even when the window
// has expired. A store failure leaves the cache untouched.
func (s *RecipeService) ListPublished(clientToken string) (Listing, error) {
	if entry, fresh := s.Cache.Snapshot(); fresh {
		if clientToken != "" && clientToken == entry.ETag {
			return Listing{ETag: entry.ETag, LastModified: entry.LastModified, NotModified: true}, nil
		}
		return Listing{Body: entry.Body, ETag: entry.ETag, LastModified: entry.LastModified}, nil
	}

	recipes, err := s.Repo.ListAll()
	if err != nil {
		return Listing{}, err
	}
	body, etag, lastModified, err := buildListing(recipes, s.Now())
	if err != nil {
		return Listing{}, err
	}
	s.Cache.Replace(body, etag, lastModified)

	if clientToken != "" && clientToken == etag {
		return Listing{ETag: etag, LastModified: lastModified, NotModified: true}, nil
	}
	return Listing{Body: body, ETag: etag, LastModified: lastModified}, nil
}

func (s *RecipeService) GetPublished(id string) (*model.Recipe, error) {
	return s.Repo.GetByID(id)
}

// Publish upserts into the published namespace and invalidates the listing
// cache. Order matters: persist, invalidate, only then report success.
func (s *RecipeService) Publish(id string, body json.RawMessage) error {
	if err := s.Repo.Upsert(id, body); err != nil {
		return err
	}
	s.Cache.Invalidate()
	return nil
}

// Unpublish removes a recipe and invalidates the listing cache.
func (s *RecipeService) Unpublish(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.Cache.Invalidate()
	return nil
}

// buildListing serializes the ordered recipes, projecting each document to
// its body fields plus "id", and derives the snapshot ETag from the row count
// and the newest updated_at. Count plus max timestamp cannot tell a
// delete-then-insert-with-an-earlier-timestamp apart from no change; that
// matches the upstream behavior and is acceptable for a non-cryptographic
// cache validator.
func buildListing(recipes []model.Recipe, now time.Time) (body, etag, lastModified string, err error) {
	items := make([]map[string]interface{}, 0, len(recipes))
	for _, rec := range recipes {
		item := map[string]interface{}{}
		if err := json.Unmarshal(rec.Body, &item); err != nil || item == nil {
			// Non-object documents keep their payload under "body".
			item = map[string]interface{}{"body": rec.Body}
		}
		item["id"] = rec.ID
		items = append(items, item)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return "", "", "", err
	}

	newest := now
	if len(recipes) > 0 {
		newest = recipes[0].UpdatedAt
	}
	etag = fmt.Sprintf("\"r%d-%d\"", len(recipes), newest.UnixMilli())
	lastModified = newest.UTC().Format(http.TimeFormat)
	return string(raw), etag, lastModified, nil
}

// OwnerRecipeService serves the per-owner namespace. It bypasses the cache
// entirely; only the global listing is cached.
type OwnerRecipeService struct {
	Repo *repository.OwnerRecipeRepository
}

func NewOwnerRecipeService(repo *repository.OwnerRecipeRepository) *OwnerRecipeService {
	return &OwnerRecipeService{Repo: repo}
}

func (s *OwnerRecipeService) List(ownerID string) ([]model.Recipe, error) {
	return s.Repo.ListByOwner(ownerID)
}

func (s *OwnerRecipeService) Get(ownerID, id string) (*model.Recipe, error) {
	return s.Repo.Get(ownerID, id)
}

func (s *OwnerRecipeService) Save(ownerID, id string, body json.RawMessage) error {
	return s.Repo.Upsert(ownerID, id, body)
}

func (s *OwnerRecipeService) Sync(ownerID string, items []model.SyncItem) error {
	return s.Repo.BulkUpsert(ownerID, items)
}

func (s *OwnerRecipeService) Remove(ownerID, id string) error {
	return s.Repo.Delete(ownerID, id)
}
