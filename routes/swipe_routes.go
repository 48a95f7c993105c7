package routes

import (
	"munchmate_server/controllers"
	"munchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up the swipe recording route
func RegisterSwipeRoutes(r *mux.Router, swipeService *services.SwipeService) {
	controller := controllers.NewSwipeController(swipeService)

	r.HandleFunc("/api/sessions/{sessionId}/swipes", controller.HandleRecordSwipe).Methods("POST")
}
