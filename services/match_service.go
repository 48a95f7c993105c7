package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"munchmate_server/models"

	"github.com/google/uuid"
)

// MatchService decides, from the accumulated swipe state, whether a mutual
// like exists and commits at most one match per epoch. It runs after every
// swipe, from every participant's client, so everything here must tolerate
// a concurrent evaluator reaching the same conclusion first.
type MatchService struct {
	Store    SessionStore
	Notifier Notifier
}

// EvaluateSession re-reads the session and either commits a match, marks
// the session exhausted, or does nothing. Losing the conditional commit to
// another evaluator is silent success.
func (ms *MatchService) EvaluateSession(ctx context.Context, sessionID string) error {
	session, err := liveSession(ctx, ms.Store, sessionID)
	if err != nil {
		return err
	}

	if session.Status != models.StatusActive || len(session.Users) < 2 {
		return nil
	}

	liked := likedIntersection(session.Users)
	if len(liked) > 0 {
		restaurant, ok := pickCandidate(session, liked)
		if !ok {
			// Liked ids that resolve to no payload would mean decks and the
			// canonical list disagree; nothing sane to commit.
			return fmt.Errorf("no restaurant payload found for mutual like in session %s", sessionID)
		}

		match := models.Match{
			MatchID:      uuid.NewString(),
			RestaurantID: restaurant.ID,
			Restaurant:   restaurant,
			Timestamp:    time.Now().UnixMilli(),
			Users:        likersOf(session.Users, restaurant.ID),
		}

		err := ms.Store.AppendMatch(ctx, sessionID, match)
		if errors.Is(err, ErrVersionConflict) {
			log.Printf("Match on session %s already committed by another evaluator", sessionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to commit match: %w", err)
		}

		notify(ms.Notifier, sessionID)
		return nil
	}

	// No mutual like: the session is spent once every participant has run
	// through their personal deck.
	allExhausted := true
	for _, u := range session.Users {
		if !u.Exhausted() {
			allExhausted = false
			break
		}
	}
	if allExhausted {
		err := ms.Store.SetStatusIf(ctx, sessionID, models.StatusActive, models.StatusExhausted)
		if errors.Is(err, ErrVersionConflict) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to mark session exhausted: %w", err)
		}
		log.Printf("Session %s exhausted with no match", sessionID)
		notify(ms.Notifier, sessionID)
	}

	return nil
}

// likedIntersection returns the restaurant ids liked by every participant.
func likedIntersection(users map[string]models.Participant) map[string]struct{} {
	liked := map[string]struct{}{}
	first := true
	for _, u := range users {
		mine := map[string]struct{}{}
		for restaurantID, swipe := range u.Swipes {
			if swipe.Direction == models.SwipeRight {
				mine[restaurantID] = struct{}{}
			}
		}
		if first {
			liked = mine
			first = false
			continue
		}
		for restaurantID := range liked {
			if _, ok := mine[restaurantID]; !ok {
				delete(liked, restaurantID)
			}
		}
	}
	return liked
}

// pickCandidate chooses one liked restaurant deterministically — the
// earliest in the canonical list — so concurrent evaluators agree on the
// same winner regardless of scan order. Payload falls back to the personal
// decks, which carry the same restaurant data by value.
func pickCandidate(session *models.Session, liked map[string]struct{}) (models.Restaurant, bool) {
	for _, r := range session.Restaurants {
		if _, ok := liked[r.ID]; ok {
			return r, true
		}
	}

	ids := make([]string, 0, len(liked))
	for id := range liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, u := range session.Users {
			for _, r := range u.PersonalDeck {
				if r.ID == id {
					return r, true
				}
			}
		}
	}
	return models.Restaurant{}, false
}

// likersOf lists the participants whose like caused the match, sorted for a
// stable record.
func likersOf(users map[string]models.Participant, restaurantID string) []string {
	ids := []string{}
	for participantID, u := range users {
		if swipe, ok := u.Swipes[restaurantID]; ok && swipe.Direction == models.SwipeRight {
			ids = append(ids, participantID)
		}
	}
	sort.Strings(ids)
	return ids
}
