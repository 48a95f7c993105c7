package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"munchmate_server/models"
)

// SwipeService validates and records directional decisions. Each swipe
// writes only under the swiping participant's own subtree, so two
// participants never contend on the same field.
type SwipeService struct {
	Store    SessionStore
	Matches  *MatchService
	Notifier Notifier
}

// RecordSwipe persists one decision and advances the participant's cursor,
// then hands the session to the match detector. The candidate must be the
// one at the participant's cursor, and only one swipe per candidate is
// allowed per epoch.
func (ws *SwipeService) RecordSwipe(ctx context.Context, sessionID, participantID, restaurantID, direction string) error {
	if direction != models.SwipeRight && direction != models.SwipeLeft {
		return fmt.Errorf("invalid swipe direction %q", direction)
	}

	session, err := liveSession(ctx, ws.Store, sessionID)
	if err != nil {
		return err
	}

	participant, exists := session.Users[participantID]
	if !exists {
		return ErrParticipantNotFound
	}
	if session.Status != models.StatusActive {
		return ErrSessionNotActive
	}
	if _, swiped := participant.Swipes[restaurantID]; swiped {
		return ErrDuplicateSwipe
	}
	if participant.Exhausted() || participant.PersonalDeck[participant.CurrentIndex].ID != restaurantID {
		return ErrInvalidSwipeOrder
	}

	swipe := models.Swipe{
		Direction:   direction,
		Timestamp:   time.Now().UnixMilli(),
		SwipeNumber: participant.CurrentIndex,
	}

	err = ws.Store.PutSwipe(ctx, sessionID, participantID, restaurantID, swipe, participant.CurrentIndex)
	if errors.Is(err, ErrVersionConflict) {
		// The guarded write found a swipe already there (or a moved
		// cursor): a duplicate delivery beat us, not a user error.
		return ErrDuplicateSwipe
	}
	if err != nil {
		return fmt.Errorf("failed to record swipe: %w", err)
	}

	log.Printf("Recorded %s swipe by %s on %s (swipe #%d)", direction, participantID, restaurantID, swipe.SwipeNumber)
	notify(ws.Notifier, sessionID)

	// Evaluate after every swipe; the detector re-reads the document so it
	// sees concurrent swipes that landed since ours.
	return ws.Matches.EvaluateSession(ctx, sessionID)
}
