package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"munchmate_server/services"

	"github.com/gorilla/mux"
)

// SessionController handles HTTP requests for the session lifecycle
type SessionController struct {
	Sessions *services.SessionService
	Places   *services.PlacesService
}

// NewSessionController creates a new SessionController instance
func NewSessionController(sessions *services.SessionService, places *services.PlacesService) *SessionController {
	return &SessionController{Sessions: sessions, Places: places}
}

const searchRadiusMeters = 5000

// HandleCreateSession resolves a location, fetches candidates and creates
// a session. Accepts either a zip code or raw coordinates ("current
// location" flow).
func (sc *SessionController) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ZipCode   string   `json:"zipCode"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	// Pointers distinguish "coordinates omitted" from a literal (0, 0)
	hasCoordinates := request.Latitude != nil && request.Longitude != nil
	if request.ZipCode == "" && !hasCoordinates {
		http.Error(w, "zipCode or latitude/longitude is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	var lat, lng float64
	label := request.ZipCode
	if hasCoordinates {
		lat, lng = *request.Latitude, *request.Longitude
	} else {
		var err error
		lat, lng, err = sc.Places.ResolveCoordinates(ctx, request.ZipCode)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if label == "" {
		label = "Your Location"
	}

	restaurants, err := sc.Places.FetchCandidates(ctx, lat, lng, searchRadiusMeters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sessionID, err := sc.Sessions.CreateSession(ctx, label, restaurants)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"sessionId": sessionID})
}

// HandleJoinSession admits a participant; re-joining is a no-op
func (sc *SessionController) HandleJoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	if err := sc.Sessions.JoinSession(context.Background(), sessionID, request.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Joined session"})
}

// HandleMarkReady flags a participant as ready to start swiping
func (sc *SessionController) HandleMarkReady(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	if err := sc.Sessions.MarkReady(context.Background(), sessionID, request.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Marked ready"})
}

// HandleResetSession starts a new epoch with a fresh candidate list. The
// stored zip code is re-geocoded unless the client sends coordinates.
func (sc *SessionController) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	var request struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&request)

	ctx := context.Background()
	session, err := sc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var lat, lng float64
	if request.Latitude != nil && request.Longitude != nil {
		lat, lng = *request.Latitude, *request.Longitude
	} else {
		lat, lng, err = sc.Places.ResolveCoordinates(ctx, session.ZipCode)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	restaurants, err := sc.Places.FetchCandidates(ctx, lat, lng, searchRadiusMeters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := sc.Sessions.ResetSession(ctx, sessionID, restaurants); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Session reset"})
}

// HandleGetSession returns the raw session document
func (sc *SessionController) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := sc.Sessions.GetSession(context.Background(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// HandleGetView returns the projected presentation state for one viewer
func (sc *SessionController) HandleGetView(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	session, err := sc.Sessions.GetSession(context.Background(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services.ProjectView(session, userID))
}

// writeServiceError maps the service error taxonomy onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrParticipantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, services.ErrSessionNotActive), errors.Is(err, services.ErrInvalidSwipeOrder):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNoCandidatesFound):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrStoreUnavailable):
		http.Error(w, "Store unavailable, try again", http.StatusServiceUnavailable)
	default:
		log.Println("Unhandled service error:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
