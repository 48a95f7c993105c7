package routes

import (
	"munchmate_server/controllers"
	"munchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterSessionRoutes sets up routes for session lifecycle operations under /api/sessions
func RegisterSessionRoutes(r *mux.Router, sessionService *services.SessionService, placesService *services.PlacesService) {
	controller := controllers.NewSessionController(sessionService, placesService)

	sessionRouter := r.PathPrefix("/api/sessions").Subrouter()

	sessionRouter.HandleFunc("", controller.HandleCreateSession).Methods("POST")
	sessionRouter.HandleFunc("/{sessionId}", controller.HandleGetSession).Methods("GET")
	sessionRouter.HandleFunc("/{sessionId}/join", controller.HandleJoinSession).Methods("POST")
	sessionRouter.HandleFunc("/{sessionId}/ready", controller.HandleMarkReady).Methods("POST")
	sessionRouter.HandleFunc("/{sessionId}/reset", controller.HandleResetSession).Methods("POST")
	sessionRouter.HandleFunc("/{sessionId}/view", controller.HandleGetView).Methods("GET")
}
