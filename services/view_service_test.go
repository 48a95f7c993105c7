package services

import (
	"testing"

	"munchmate_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewSession(status string) *models.Session {
	restaurants := testRestaurants("A", "B", "C")
	return &models.Session{
		ID:          "sess1234",
		Restaurants: restaurants,
		Status:      status,
		Users: map[string]models.Participant{
			"p1": {ID: "p1", Ready: true, PersonalDeck: ShuffleDeck(restaurants, "p1"), Swipes: map[string]models.Swipe{}},
			"p2": {ID: "p2", Ready: true, PersonalDeck: ShuffleDeck(restaurants, "p2"), Swipes: map[string]models.Swipe{}},
		},
		Matches: []models.Match{},
	}
}

func TestProjectViewAwaitingParticipants(t *testing.T) {
	session := viewSession(models.StatusWaitingForUsers)
	delete(session.Users, "p2")

	view := ProjectView(session, "p1")
	assert.Equal(t, models.ViewAwaitingParticipants, view.State)
	assert.Equal(t, 1, view.Participants)
}

func TestProjectViewViewerNotJoinedYet(t *testing.T) {
	session := viewSession(models.StatusWaitingForReady)

	view := ProjectView(session, "stranger")
	assert.Equal(t, models.ViewAwaitingParticipants, view.State)
}

func TestProjectViewAwaitingReady(t *testing.T) {
	session := viewSession(models.StatusWaitingForReady)
	p := session.Users["p2"]
	p.Ready = false
	session.Users["p2"] = p

	view := ProjectView(session, "p1")
	assert.Equal(t, models.ViewAwaitingReady, view.State)
	assert.Equal(t, 1, view.ReadyCount)
	assert.Equal(t, 2, view.Participants)
}

func TestProjectViewSwipingShowsCursorCandidate(t *testing.T) {
	session := viewSession(models.StatusActive)
	p := session.Users["p1"]
	p.CurrentIndex = 1
	session.Users["p1"] = p

	view := ProjectView(session, "p1")
	assert.Equal(t, models.ViewSwiping, view.State)
	require.NotNil(t, view.CurrentRestaurant)
	assert.Equal(t, session.Users["p1"].PersonalDeck[1].ID, view.CurrentRestaurant.ID)
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, 3, view.DeckSize)
}

func TestProjectViewExhaustedForFinishedViewer(t *testing.T) {
	session := viewSession(models.StatusActive)
	p := session.Users["p1"]
	p.CurrentIndex = len(p.PersonalDeck)
	session.Users["p1"] = p

	view := ProjectView(session, "p1")
	assert.Equal(t, models.ViewExhausted, view.State)
	assert.Nil(t, view.CurrentRestaurant)

	// The other participant still has cards
	other := ProjectView(session, "p2")
	assert.Equal(t, models.ViewSwiping, other.State)
}

func TestProjectViewMatchedOutranksEverything(t *testing.T) {
	session := viewSession(models.StatusMatched)
	session.Matches = []models.Match{{
		MatchID:      "m1",
		RestaurantID: "B",
		Restaurant:   testRestaurants("B")[0],
	}}

	view := ProjectView(session, "p1")
	assert.Equal(t, models.ViewMatched, view.State)
	require.NotNil(t, view.Match)
	assert.Equal(t, "B", view.Match.RestaurantID)
}

func TestProjectViewSessionExhaustedStatus(t *testing.T) {
	session := viewSession(models.StatusExhausted)

	view := ProjectView(session, "p2")
	assert.Equal(t, models.ViewExhausted, view.State)
}
