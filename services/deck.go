package services

import (
	"math/rand"

	"munchmate_server/models"
)

// deckSeed derives an integer seed from the participant id's bytes. The
// same id always yields the same seed, which keeps decks stable across
// reconnects.
func deckSeed(participantID string) int64 {
	var seed int64
	for _, b := range []byte(participantID) {
		seed += int64(b)
	}
	return seed
}

// ShuffleDeck returns a permutation of the canonical restaurant list that
// is unique to the participant but deterministic: the same participant id
// and candidate list always produce the same order.
func ShuffleDeck(restaurants []models.Restaurant, participantID string) []models.Restaurant {
	deck := make([]models.Restaurant, len(restaurants))
	copy(deck, restaurants)

	rng := rand.New(rand.NewSource(deckSeed(participantID)))
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
