package models

import "time"

// SessionsTable is the default DynamoDB table name for sessions
const SessionsTable = "Sessions"

// SessionTTL is how long a session lives after creation
const SessionTTL = 24 * time.Hour

// Session lifecycle statuses
const (
	StatusWaitingForUsers = "waiting_for_users"
	StatusWaitingForReady = "waiting_for_ready"
	StatusActive          = "active"
	StatusMatched         = "matched"
	StatusExhausted       = "exhausted"
)

// Swipe directions
const (
	SwipeRight = "right" // like
	SwipeLeft  = "left"  // pass
)

// Swipe is one participant's decision on one candidate. Write-once per
// (participant, candidate) pair within an epoch.
type Swipe struct {
	Direction   string `dynamodbav:"direction" json:"direction"`
	Timestamp   int64  `dynamodbav:"timestamp" json:"timestamp"`
	SwipeNumber int    `dynamodbav:"swipeNumber" json:"swipeNumber"`
}

// Match is the first candidate liked by all participants in an epoch.
// The restaurant payload is denormalized so clients need not re-fetch it.
type Match struct {
	MatchID      string     `dynamodbav:"matchId" json:"matchId"`
	RestaurantID string     `dynamodbav:"restaurantId" json:"restaurantId"`
	Restaurant   Restaurant `dynamodbav:"restaurant" json:"restaurant"`
	Timestamp    int64      `dynamodbav:"timestamp" json:"timestamp"`
	Users        []string   `dynamodbav:"users" json:"users"`
}

// Participant is one of the two users of a session. PersonalDeck is a
// deterministic permutation of the session's canonical restaurant list,
// keyed by the participant id so it survives reconnects.
type Participant struct {
	ID           string           `dynamodbav:"id" json:"id"`
	JoinedAt     int64            `dynamodbav:"joinedAt" json:"joinedAt"`
	Ready        bool             `dynamodbav:"ready" json:"ready"`
	PersonalDeck []Restaurant     `dynamodbav:"personalDeck" json:"personalDeck"`
	CurrentIndex int              `dynamodbav:"currentIndex" json:"currentIndex"`
	Swipes       map[string]Swipe `dynamodbav:"swipes" json:"swipes"`
}

// Exhausted reports whether the participant has swiped through their
// entire personal deck.
func (p *Participant) Exhausted() bool {
	return p.CurrentIndex >= len(p.PersonalDeck)
}

// Session is the shared document both clients read and write. One item per
// session in DynamoDB, keyed by sessionId.
type Session struct {
	ID          string                 `dynamodbav:"sessionId" json:"sessionId"`
	ZipCode     string                 `dynamodbav:"zipCode" json:"zipCode"`
	Restaurants []Restaurant           `dynamodbav:"restaurants" json:"restaurants"`
	Users       map[string]Participant `dynamodbav:"users" json:"users"`
	Matches     []Match                `dynamodbav:"matches" json:"matches"`
	Status      string                 `dynamodbav:"status" json:"status"`
	Epoch       int                    `dynamodbav:"epoch" json:"epoch"`
	CreatedAt   int64                  `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt   int64                  `dynamodbav:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the session is past its TTL at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt
}

// AllReady reports whether every participant has marked ready. False when
// fewer than two participants have joined.
func (s *Session) AllReady() bool {
	if len(s.Users) < 2 {
		return false
	}
	for _, u := range s.Users {
		if !u.Ready {
			return false
		}
	}
	return true
}
