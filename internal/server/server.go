package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/evanmoss/sharelist/internal/handler"
	"github.com/evanmoss/sharelist/internal/middleware"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/reconcile"
	"github.com/evanmoss/sharelist/internal/store"
)

type Server struct {
	db            *sql.DB
	authH         *handler.AuthHandler
	listH         *handler.ListHandler
	itemH         *handler.ItemHandler
	categoryH     *handler.CategoryHandler
	notificationH *handler.NotificationHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	listStore := store.NewListStore(db)
	itemStore := store.NewItemStore(db)
	notificationStore := store.NewNotificationStore(db)

	engine := notify.NewEngine(notificationStore, listStore, logger.With("component", "notify"))
	memberRecon := reconcile.NewMemberReconciler(listStore, engine)
	itemRecon := reconcile.NewItemReconciler(listStore, itemStore, engine)

	return &Server{
		db:            db,
		authH:         handler.NewAuthHandler(userStore, sessionStore, listStore, logger.With("component", "auth")),
		listH:         handler.NewListHandler(db, listStore, userStore, itemStore, engine, memberRecon, logger.With("component", "list")),
		itemH:         handler.NewItemHandler(db, listStore, itemStore, itemRecon, logger.With("component", "item")),
		categoryH:     handler.NewCategoryHandler(itemStore, logger.With("component", "category")),
		notificationH: handler.NewNotificationHandler(engine, logger.With("component", "notification")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /me", s.authH.Me)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, store.NewUserStore(s.db))
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /get_theme", s.authH.GetTheme)
	mux.HandleFunc("POST /set_theme", s.authH.SetTheme)

	// Dashboard routes
	mux.HandleFunc("GET /dashboard/lists", s.listH.Dashboard)
	mux.HandleFunc("POST /dashboard/create_list", s.listH.Create)
	mux.HandleFunc("POST /dashboard/delete_list", s.listH.Delete)
	mux.HandleFunc("PUT /dashboard/edit_list", s.listH.Edit)

	// List routes
	mux.HandleFunc("GET /list/get_list_data", s.listH.GetListData)
	mux.HandleFunc("POST /list/add_item", s.itemH.Add)
	mux.HandleFunc("POST /list/edit_item", s.itemH.Edit)
	mux.HandleFunc("POST /list/delete_item", s.itemH.Delete)
	mux.HandleFunc("POST /list/add_user_to_list", s.listH.AcceptInvite)
	mux.HandleFunc("POST /list/manage_users_of_list", s.listH.ManageUsers)
	mux.HandleFunc("GET /list/get_item_suggestions", s.itemH.Suggestions)
	mux.HandleFunc("GET /list/get_user_suggestions", s.listH.UserSuggestions)

	// Reference data
	mux.HandleFunc("GET /categories", s.categoryH.List)

	// Notification routes
	mux.HandleFunc("GET /get_notifications", s.notificationH.List)
	mux.HandleFunc("PUT /mark_notifications_as_read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /delete_notifications", s.notificationH.Delete)
}
