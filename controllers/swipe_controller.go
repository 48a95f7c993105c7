package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"munchmate_server/models"
	"munchmate_server/services"

	"github.com/gorilla/mux"
)

// SwipeController handles HTTP requests for swipe recording
type SwipeController struct {
	Swipes *services.SwipeService
}

// NewSwipeController creates a new SwipeController instance
func NewSwipeController(swipes *services.SwipeService) *SwipeController {
	return &SwipeController{Swipes: swipes}
}

// HandleRecordSwipe records a directional decision on the candidate at the
// participant's cursor. A duplicate swipe is reported as success so clients
// can safely redeliver.
func (sc *SwipeController) HandleRecordSwipe(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	var request struct {
		UserID       string `json:"userId"`
		RestaurantID string `json:"restaurantId"`
		Direction    string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.RestaurantID == "" || request.Direction == "" {
		http.Error(w, "userId, restaurantId, and direction are required", http.StatusBadRequest)
		return
	}
	if request.Direction != models.SwipeRight && request.Direction != models.SwipeLeft {
		http.Error(w, "direction must be \"right\" or \"left\"", http.StatusBadRequest)
		return
	}

	err := sc.Swipes.RecordSwipe(context.Background(), sessionID, request.UserID, request.RestaurantID, request.Direction)
	if errors.Is(err, services.ErrDuplicateSwipe) {
		// Most likely a duplicate event delivery, not user error
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Swipe already recorded", "duplicate": true})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Swipe recorded"})
}
