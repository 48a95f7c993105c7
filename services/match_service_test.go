package services

import (
	"context"
	"testing"

	"munchmate_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func likes(ids ...string) map[string]models.Swipe {
	swipes := map[string]models.Swipe{}
	for _, id := range ids {
		swipes[id] = models.Swipe{Direction: models.SwipeRight}
	}
	return swipes
}

func TestLikedIntersection(t *testing.T) {
	users := map[string]models.Participant{
		"p1": {Swipes: likes("A", "B", "C")},
		"p2": {Swipes: likes("B", "C", "D")},
	}
	users["p2"].Swipes["A"] = models.Swipe{Direction: models.SwipeLeft}

	liked := likedIntersection(users)
	assert.Len(t, liked, 2)
	assert.Contains(t, liked, "B")
	assert.Contains(t, liked, "C")
}

func TestLikedIntersectionEmptyWhenOneSideSilent(t *testing.T) {
	users := map[string]models.Participant{
		"p1": {Swipes: likes("A", "B")},
		"p2": {Swipes: map[string]models.Swipe{}},
	}
	assert.Empty(t, likedIntersection(users))
}

func TestPickCandidateFollowsCanonicalOrder(t *testing.T) {
	session := &models.Session{
		Restaurants: testRestaurants("A", "B", "C", "D"),
	}
	liked := map[string]struct{}{"D": {}, "B": {}}

	restaurant, ok := pickCandidate(session, liked)
	require.True(t, ok)
	assert.Equal(t, "B", restaurant.ID, "earliest canonical position wins, regardless of scan order")
}

func TestPickCandidateFallsBackToPersonalDecks(t *testing.T) {
	// Canonical list lost the entry; any personal deck carries the same
	// payload by value.
	session := &models.Session{
		Restaurants: testRestaurants("A"),
		Users: map[string]models.Participant{
			"p1": {PersonalDeck: testRestaurants("B", "A")},
		},
	}
	liked := map[string]struct{}{"B": {}}

	restaurant, ok := pickCandidate(session, liked)
	require.True(t, ok)
	assert.Equal(t, "B", restaurant.ID)
}

func TestEvaluateSessionNeedsTwoParticipants(t *testing.T) {
	store := newFakeStore()
	sessions, _, matches := newTestServices(store)
	ctx := context.Background()

	sessionID, err := sessions.CreateSession(ctx, "19104", testRestaurants("A"))
	require.NoError(t, err)
	require.NoError(t, sessions.JoinSession(ctx, sessionID, "p1"))

	require.NoError(t, matches.EvaluateSession(ctx, sessionID))

	session, err := store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, session.Matches)
}

func TestEvaluateSessionNoOpWhenAlreadyMatched(t *testing.T) {
	store := newFakeStore()
	sessions, swipes, matches := newTestServices(store)
	ctx := context.Background()

	sessionID := activeSession(t, sessions, "p1", "p2", "A", "B")

	session, err := store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, swipes.RecordSwipe(ctx, sessionID, id, session.Users[id].PersonalDeck[0].ID, models.SwipeRight))
	}

	session, err = store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	if session.Status != models.StatusMatched {
		// Decks are shuffled, so the first cards may differ; finish the
		// decks liking everything to force the match.
		for _, id := range []string{"p1", "p2"} {
			for _, r := range session.Users[id].PersonalDeck[1:] {
				_ = swipes.RecordSwipe(ctx, sessionID, id, r.ID, models.SwipeRight)
			}
		}
	}

	session, err = store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, models.StatusMatched, session.Status)
	matchCount := len(session.Matches)
	require.GreaterOrEqual(t, matchCount, 1)

	// Re-running evaluation must not add a second match
	require.NoError(t, matches.EvaluateSession(ctx, sessionID))

	session, err = store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, session.Matches, matchCount)
}

func TestMatchLosingConditionalWriteIsSilent(t *testing.T) {
	store := newFakeStore()
	sessions, _, _ := newTestServices(store)
	ctx := context.Background()

	sessionID := activeSession(t, sessions, "p1", "p2", "A", "B")

	// Hand-craft mutual likes without going through the swipe recorder,
	// then flip the status under the evaluator's feet.
	session, err := store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2"} {
		p := session.Users[id]
		p.Swipes = likes("A")
		session.Users[id] = p
	}
	require.NoError(t, store.PutSession(ctx, session))
	require.NoError(t, store.SetStatusIf(ctx, sessionID, models.StatusActive, models.StatusMatched))

	// The evaluator reads... status matched, so this is a plain no-op; now
	// force the race the other way: active snapshot, matched at commit time.
	require.NoError(t, store.SetStatusIf(ctx, sessionID, models.StatusMatched, models.StatusActive))
	racingStore := &statusFlippingStore{fakeStore: store, sessionID: sessionID}
	racingMatches := &MatchService{Store: racingStore}

	assert.NoError(t, racingMatches.EvaluateSession(ctx, sessionID), "losing the commit race is silent success")

	session, err = store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, session.Matches, "the losing evaluator must not append a match")
}

// statusFlippingStore simulates a concurrent evaluator winning the race
// between this evaluator's read and its conditional commit.
type statusFlippingStore struct {
	*fakeStore
	sessionID string
}

func (s *statusFlippingStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.fakeStore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// The other evaluator commits between our read and our write
	_ = s.fakeStore.SetStatusIf(ctx, s.sessionID, models.StatusActive, models.StatusMatched)
	session.Status = models.StatusActive
	return session, nil
}
