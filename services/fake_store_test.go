package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"munchmate_server/models"
)

// fakeStore is an in-memory SessionStore with the same conditional-write
// semantics as the DynamoDB implementation: guarded writes fail with
// ErrVersionConflict, all multi-field writes are atomic, and every read
// returns an independent snapshot.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*models.Session{}}
}

func copySession(s *models.Session) *models.Session {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	var out models.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	if out.Users == nil {
		out.Users = map[string]models.Participant{}
	}
	if out.Matches == nil {
		out.Matches = []models.Match{}
	}
	return &out
}

func (f *fakeStore) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(s), nil
}

func (f *fakeStore) PutSession(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = copySession(session)
	return nil
}

func (f *fakeStore) PutParticipant(_ context.Context, sessionID string, participant models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	s.Users[participant.ID] = participant
	return nil
}

func (f *fakeStore) SetParticipantReady(_ context.Context, sessionID, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	p, ok := s.Users[participantID]
	if !ok {
		return fmt.Errorf("%w: no participant %s", ErrStoreUnavailable, participantID)
	}
	p.Ready = true
	s.Users[participantID] = p
	return nil
}

func (f *fakeStore) PutSwipe(_ context.Context, sessionID, participantID, restaurantID string, swipe models.Swipe, expectedCursor int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	p, ok := s.Users[participantID]
	if !ok {
		return fmt.Errorf("%w: no participant %s", ErrStoreUnavailable, participantID)
	}
	if _, exists := p.Swipes[restaurantID]; exists || p.CurrentIndex != expectedCursor {
		return ErrVersionConflict
	}
	if p.Swipes == nil {
		p.Swipes = map[string]models.Swipe{}
	}
	p.Swipes[restaurantID] = swipe
	p.CurrentIndex = expectedCursor + 1
	s.Users[participantID] = p
	return nil
}

func (f *fakeStore) AppendMatch(_ context.Context, sessionID string, match models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	if s.Status != models.StatusActive {
		return ErrVersionConflict
	}
	s.Matches = append(s.Matches, match)
	s.Status = models.StatusMatched
	return nil
}

func (f *fakeStore) SetStatusIf(_ context.Context, sessionID, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	if s.Status != from {
		return ErrVersionConflict
	}
	s.Status = to
	return nil
}

func (f *fakeStore) ResetEpoch(_ context.Context, sessionID string, restaurants []models.Restaurant, decks map[string][]models.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: no session %s", ErrStoreUnavailable, sessionID)
	}
	s.Restaurants = restaurants
	s.Matches = []models.Match{}
	s.Status = models.StatusActive
	s.Epoch++
	for participantID, deck := range decks {
		p := s.Users[participantID]
		p.PersonalDeck = deck
		p.CurrentIndex = 0
		p.Swipes = map[string]models.Swipe{}
		s.Users[participantID] = p
	}
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

// newTestServices wires the service graph over a store, no notifier.
func newTestServices(store SessionStore) (*SessionService, *SwipeService, *MatchService) {
	matches := &MatchService{Store: store}
	sessions := &SessionService{Store: store}
	swipes := &SwipeService{Store: store, Matches: matches}
	return sessions, swipes, matches
}

// testRestaurants builds candidates with the given ids.
func testRestaurants(ids ...string) []models.Restaurant {
	restaurants := make([]models.Restaurant, 0, len(ids))
	for _, id := range ids {
		restaurants = append(restaurants, models.Restaurant{
			ID:       id,
			Name:     "Restaurant " + id,
			Rating:   4.5,
			Distance: "1.0 mi",
		})
	}
	return restaurants
}
