package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"munchmate_server/models"
)

// SessionService owns the session lifecycle: creation, joins, readiness and
// epoch resets. All state lives in the shared document; this service only
// reads, decides and writes.
type SessionService struct {
	Store    SessionStore
	Notifier Notifier
}

// CreateSession writes a new session in waiting_for_users with the given
// canonical candidate list and a 24h TTL. The creating client joins
// afterwards like any other participant.
func (ss *SessionService) CreateSession(ctx context.Context, zipCode string, restaurants []models.Restaurant) (string, error) {
	if len(restaurants) == 0 {
		return "", ErrNoCandidatesFound
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &models.Session{
		ID:          sessionID,
		ZipCode:     zipCode,
		Restaurants: restaurants,
		Users:       map[string]models.Participant{},
		Matches:     []models.Match{},
		Status:      models.StatusWaitingForUsers,
		Epoch:       1,
		CreatedAt:   now.UnixMilli(),
		ExpiresAt:   now.Add(models.SessionTTL).UnixMilli(),
	}

	if err := ss.Store.PutSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("Created session %s with %d restaurants for %q", sessionID, len(restaurants), zipCode)
	return sessionID, nil
}

// GetSession reads the current session document, rejecting expired sessions.
func (ss *SessionService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return liveSession(ctx, ss.Store, sessionID)
}

// JoinSession admits a participant. Re-joining is a no-op so a reconnect
// never reshuffles the deck or resets the cursor. The second join advances
// the session to waiting_for_ready.
func (ss *SessionService) JoinSession(ctx context.Context, sessionID, participantID string) error {
	session, err := ss.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, exists := session.Users[participantID]; exists {
		log.Printf("Participant %s re-joined session %s, keeping existing deck", participantID, sessionID)
		// A previous join may have written the participant but lost the
		// status race against a stale read; the re-join is the retry.
		return ss.advanceWhenFull(ctx, session)
	}

	participant := models.Participant{
		ID:           participantID,
		JoinedAt:     time.Now().UnixMilli(),
		Ready:        false,
		PersonalDeck: ShuffleDeck(session.Restaurants, participantID),
		CurrentIndex: 0,
		Swipes:       map[string]models.Swipe{},
	}

	if err := ss.Store.PutParticipant(ctx, sessionID, participant); err != nil {
		return fmt.Errorf("failed to join session %s: %w", sessionID, err)
	}

	// Decide the transition from post-write state, never the snapshot we
	// read before writing: when both participants join at the same instant,
	// each pre-write snapshot shows one user and neither joiner would
	// advance the status.
	session, err = ss.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := ss.advanceWhenFull(ctx, session); err != nil {
		return err
	}

	notify(ss.Notifier, sessionID)
	return nil
}

// advanceWhenFull moves a full session out of waiting_for_users. Losing
// the condition just means the status already advanced.
func (ss *SessionService) advanceWhenFull(ctx context.Context, session *models.Session) error {
	if len(session.Users) < 2 || session.Status != models.StatusWaitingForUsers {
		return nil
	}
	if err := ss.Store.SetStatusIf(ctx, session.ID, models.StatusWaitingForUsers, models.StatusWaitingForReady); err != nil && !errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("failed to advance session %s: %w", session.ID, err)
	}
	return nil
}

// MarkReady flags a participant as ready. When that makes everyone ready,
// the session goes active. Marking ready twice is a no-op.
func (ss *SessionService) MarkReady(ctx context.Context, sessionID, participantID string) error {
	session, err := ss.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	participant, exists := session.Users[participantID]
	if !exists {
		return ErrParticipantNotFound
	}
	if participant.Ready {
		// An earlier call may have flipped the flag but lost the
		// activation race against a stale read; retrying ready recovers.
		return ss.activateWhenAllReady(ctx, session)
	}

	if err := ss.Store.SetParticipantReady(ctx, sessionID, participantID); err != nil {
		return fmt.Errorf("failed to mark %s ready: %w", participantID, err)
	}

	// Decide activation from post-write state: when both participants tap
	// ready at the same instant, each pre-write snapshot shows the other
	// still unready and neither caller would activate.
	session, err = ss.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := ss.activateWhenAllReady(ctx, session); err != nil {
		return err
	}

	notify(ss.Notifier, sessionID)
	return nil
}

// activateWhenAllReady starts the swiping phase once every participant has
// marked ready. Losing the condition just means another caller activated.
func (ss *SessionService) activateWhenAllReady(ctx context.Context, session *models.Session) error {
	if !session.AllReady() || session.Status != models.StatusWaitingForReady {
		return nil
	}
	if err := ss.Store.SetStatusIf(ctx, session.ID, models.StatusWaitingForReady, models.StatusActive); err != nil && !errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("failed to activate session %s: %w", session.ID, err)
	}
	log.Printf("Session %s is active, let the swiping begin", session.ID)
	return nil
}

// ResetSession begins a new epoch: fresh canonical list, cleared matches,
// every participant's swipes and cursor wiped and their deck re-derived
// from the new list with the same deterministic shuffle. Identity and
// readiness survive the reset.
func (ss *SessionService) ResetSession(ctx context.Context, sessionID string, newRestaurants []models.Restaurant) error {
	if len(newRestaurants) == 0 {
		return ErrNoCandidatesFound
	}

	session, err := ss.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	decks := make(map[string][]models.Restaurant, len(session.Users))
	for participantID := range session.Users {
		decks[participantID] = ShuffleDeck(newRestaurants, participantID)
	}

	if err := ss.Store.ResetEpoch(ctx, sessionID, newRestaurants, decks); err != nil {
		return fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}

	log.Printf("Session %s reset to epoch %d with %d fresh restaurants", sessionID, session.Epoch+1, len(newRestaurants))
	notify(ss.Notifier, sessionID)
	return nil
}

// DeleteSession removes an expired session document. The periodic sweep
// lives outside this service; this is the primitive it calls.
func (ss *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return ss.Store.DeleteSession(ctx, sessionID)
}
