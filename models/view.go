package models

// View states derived from a session snapshot for one viewer
const (
	ViewAwaitingParticipants = "awaiting_participants"
	ViewAwaitingReady        = "awaiting_ready"
	ViewSwiping              = "swiping"
	ViewMatched              = "matched"
	ViewExhausted            = "exhausted"
)

// SessionView is the presentation state a client should render. It is a
// pure projection of the session document and a viewer id, recomputed from
// scratch after every change notification.
type SessionView struct {
	SessionID         string      `json:"sessionId"`
	State             string      `json:"state"`
	Participants      int         `json:"participants"`
	ReadyCount        int         `json:"readyCount"`
	CurrentRestaurant *Restaurant `json:"currentRestaurant,omitempty"`
	Position          int         `json:"position"`
	DeckSize          int         `json:"deckSize"`
	Match             *Match      `json:"match,omitempty"`
}
