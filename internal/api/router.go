package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stonecluster/internal/api/handler"
	"github.com/mcoot/stonecluster/internal/api/middleware"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/relay"
	"github.com/mcoot/stonecluster/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController room.ControllerInterface
	Hub            *relay.Hub
	Rules          model.Ruleset
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	metaHandler := handler.NewMetaHandler(cfg.Hub, cfg.Rules)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", metaHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/rules", metaHandler.Rules).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	// Relay websocket endpoint. Recovery sits inside logging so it can see
	// whether the upgrade already hijacked the connection.
	ws := loggingMiddleware(recoveryMiddleware(http.HandlerFunc(cfg.Hub.ServeWS)))
	r.Handle("/ws", ws).Methods(http.MethodGet)

	return r
}
