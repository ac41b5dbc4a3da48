package router

import (
	"database/sql"
	"net/http"
	"time"

	"resepku/config"
	authpkg "resepku/internal/auth"
	"resepku/internal/cache"
	"resepku/internal/notify"
	"resepku/internal/order"
	recipeHandler "resepku/internal/recipe"
	"resepku/internal/recipe/repository"
	"resepku/internal/recipe/service"
	"resepku/middleware"
	"resepku/socket"
)

func Setup(db *sql.DB, hub *socket.Hub, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware

	// Live order feed
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// Recipes: global published namespace (cached listing) and the
	// per-owner namespace (never cached).
	listing := cache.NewListing(cache.DefaultWindow)
	published := service.NewRecipeService(repository.NewRecipeRepository(db), listing)
	owned := service.NewOwnerRecipeService(repository.NewOwnerRecipeRepository(db))
	recipes := recipeHandler.NewRecipeHandler(published, owned)

	mux.HandleFunc("GET /api/recipes", recipes.ListPublished)
	mux.HandleFunc("GET /api/recipes/{id}", recipes.GetPublished)
	mux.Handle("PUT /api/recipes/{id}", auth(http.HandlerFunc(recipes.Publish)))
	mux.Handle("DELETE /api/recipes/{id}", auth(http.HandlerFunc(recipes.Unpublish)))

	mux.Handle("GET /api/my/recipes", auth(http.HandlerFunc(recipes.ListOwned)))
	mux.Handle("GET /api/my/recipes/{id}", auth(http.HandlerFunc(recipes.GetOwned)))
	mux.Handle("PUT /api/my/recipes/{id}", auth(http.HandlerFunc(recipes.SaveOwned)))
	mux.Handle("POST /api/my/recipes/sync", auth(http.HandlerFunc(recipes.SyncOwned)))
	mux.Handle("DELETE /api/my/recipes/{id}", auth(http.HandlerFunc(recipes.RemoveOwned)))

	// Telegram identity binding
	login := authpkg.NewAuthHandler(
		authpkg.WidgetVerifier{BotToken: cfg.BotToken, MaxAge: 24 * time.Hour},
		authpkg.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: 7 * 24 * time.Hour},
		authpkg.NewOwnerRepository(db),
	)
	mux.HandleFunc("POST /api/auth/telegram", login.TelegramLogin)

	// Order relay
	var sender notify.Sender = notify.LogSender{}
	if cfg.HasBot() {
		sender = notify.NewTelegramSender(cfg.BotToken, cfg.OrderChatID)
	}
	orders := order.NewOrderHandler(order.NewService(sender, hub))
	mux.HandleFunc("POST /api/orders", orders.PlaceOrder)

	return middleware.CORSMiddleware(cfg.AllowedOrigin, mux)
}
