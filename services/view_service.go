package services

import "munchmate_server/models"

// ProjectView derives the screen a viewer should see from a raw session
// snapshot. Pure function, no hidden state: it runs independently on every
// subscriber after every change notification, so it must be recomputable
// from the document alone.
func ProjectView(session *models.Session, viewerID string) models.SessionView {
	view := models.SessionView{
		SessionID:    session.ID,
		Participants: len(session.Users),
	}
	for _, u := range session.Users {
		if u.Ready {
			view.ReadyCount++
		}
	}

	// A committed match outranks everything else, including a viewer who
	// still has cards left.
	if session.Status == models.StatusMatched && len(session.Matches) > 0 {
		view.State = models.ViewMatched
		view.Match = &session.Matches[0]
		return view
	}

	viewer, joined := session.Users[viewerID]
	if len(session.Users) < 2 || !joined {
		view.State = models.ViewAwaitingParticipants
		return view
	}

	view.DeckSize = len(viewer.PersonalDeck)
	view.Position = viewer.CurrentIndex

	if session.Status == models.StatusWaitingForUsers || session.Status == models.StatusWaitingForReady || !session.AllReady() {
		view.State = models.ViewAwaitingReady
		return view
	}

	if session.Status == models.StatusExhausted || viewer.Exhausted() {
		view.State = models.ViewExhausted
		return view
	}

	view.State = models.ViewSwiping
	current := viewer.PersonalDeck[viewer.CurrentIndex]
	view.CurrentRestaurant = &current
	return view
}
