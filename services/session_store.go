package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"munchmate_server/models"
	"munchmate_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SessionStore is the shared-document-store adapter. Every method is one
// round trip; multi-field writes are atomic within a single call. The
// conditional methods return ErrVersionConflict when the guard fails, which
// is how concurrent writers lose races safely.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	PutSession(ctx context.Context, session *models.Session) error
	PutParticipant(ctx context.Context, sessionID string, participant models.Participant) error
	SetParticipantReady(ctx context.Context, sessionID, participantID string) error
	// PutSwipe records a swipe and advances the cursor in one guarded write.
	// The guard rejects duplicates and stale cursors in a single shot.
	PutSwipe(ctx context.Context, sessionID, participantID, restaurantID string, swipe models.Swipe, expectedCursor int) error
	// AppendMatch commits a match and flips the status to matched, guarded
	// by "status is still active" so at most one match lands per epoch.
	AppendMatch(ctx context.Context, sessionID string, match models.Match) error
	// SetStatusIf transitions the lifecycle status only from an expected one.
	SetStatusIf(ctx context.Context, sessionID, from, to string) error
	// ResetEpoch atomically installs a new candidate list, clears matches
	// and every participant's swipes/cursor, and reactivates the session.
	ResetEpoch(ctx context.Context, sessionID string, restaurants []models.Restaurant, decks map[string][]models.Restaurant) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// liveSession reads the current document and rejects expired sessions.
// Handlers always re-read before deciding; cached copies are never trusted.
func liveSession(ctx context.Context, store SessionStore, sessionID string) (*models.Session, error) {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// DynamoSessionStore keeps each session as one item in the Sessions table.
type DynamoSessionStore struct {
	Dynamo *DynamoService
	Table  string
}

// NewDynamoSessionStore builds the store, honoring the SESSIONS_TABLE
// environment variable when set.
func NewDynamoSessionStore(dynamo *DynamoService) *DynamoSessionStore {
	table := os.Getenv("SESSIONS_TABLE")
	if table == "" {
		table = models.SessionsTable
	}
	return &DynamoSessionStore{Dynamo: dynamo, Table: table}
}

func sessionKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"sessionId": &types.AttributeValueMemberS{Value: sessionID},
	}
}

func numberValue(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}

func (s *DynamoSessionStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	item, err := s.Dynamo.GetItem(ctx, s.Table, sessionKey(sessionID))
	if err != nil {
		log.Printf("❌ Failed to read session %s: %v", sessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if item == nil {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	if err := attributevalue.UnmarshalMap(item, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *DynamoSessionStore) PutSession(ctx context.Context, session *models.Session) error {
	item, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}
	if err := s.Dynamo.PutItem(ctx, s.Table, item); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) PutParticipant(ctx context.Context, sessionID string, participant models.Participant) error {
	value, err := attributevalue.Marshal(participant)
	if err != nil {
		return fmt.Errorf("failed to marshal participant %s: %w", participant.ID, err)
	}

	_, err = s.Dynamo.UpdateItem(ctx, s.Table,
		"SET #users.#uid = :participant",
		sessionKey(sessionID),
		map[string]types.AttributeValue{":participant": value},
		map[string]string{"#users": "users", "#uid": participant.ID},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) SetParticipantReady(ctx context.Context, sessionID, participantID string) error {
	_, err := s.Dynamo.UpdateItem(ctx, s.Table,
		"SET #users.#uid.#ready = :ready",
		sessionKey(sessionID),
		map[string]types.AttributeValue{":ready": &types.AttributeValueMemberBOOL{Value: true}},
		map[string]string{"#users": "users", "#uid": participantID, "#ready": "ready"},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) PutSwipe(ctx context.Context, sessionID, participantID, restaurantID string, swipe models.Swipe, expectedCursor int) error {
	value, err := attributevalue.Marshal(swipe)
	if err != nil {
		return fmt.Errorf("failed to marshal swipe: %w", err)
	}

	// The swipe lands and the cursor advances in a single guarded write:
	// the swipe must not exist yet and the cursor must still be where the
	// caller read it.
	_, err = s.Dynamo.UpdateItemWithCondition(ctx, s.Table,
		"SET #users.#uid.#swipes.#rid = :swipe, #users.#uid.#cursor = :next",
		"attribute_not_exists(#users.#uid.#swipes.#rid) AND #users.#uid.#cursor = :expected",
		sessionKey(sessionID),
		map[string]types.AttributeValue{
			":swipe":    value,
			":next":     numberValue(expectedCursor + 1),
			":expected": numberValue(expectedCursor),
		},
		map[string]string{
			"#users":  "users",
			"#uid":    participantID,
			"#swipes": "swipes",
			"#rid":    restaurantID,
			"#cursor": "currentIndex",
		},
	)
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) AppendMatch(ctx context.Context, sessionID string, match models.Match) error {
	matchValue, err := attributevalue.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	attrs, err := s.Dynamo.UpdateItemWithCondition(ctx, s.Table,
		"SET #matches = list_append(#matches, :match), #status = :matched",
		"#status = :active",
		sessionKey(sessionID),
		map[string]types.AttributeValue{
			":match":   &types.AttributeValueMemberL{Value: []types.AttributeValue{matchValue}},
			":matched": &types.AttributeValueMemberS{Value: models.StatusMatched},
			":active":  &types.AttributeValueMemberS{Value: models.StatusActive},
		},
		map[string]string{"#matches": "matches", "#status": "status"},
	)
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Printf("✅ Match %s committed on session %s, status now %q", match.MatchID, sessionID, utils.ExtractString(attrs, "status"))
	return nil
}

func (s *DynamoSessionStore) SetStatusIf(ctx context.Context, sessionID, from, to string) error {
	_, err := s.Dynamo.UpdateItemWithCondition(ctx, s.Table,
		"SET #status = :to",
		"#status = :from",
		sessionKey(sessionID),
		map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: to},
			":from": &types.AttributeValueMemberS{Value: from},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) ResetEpoch(ctx context.Context, sessionID string, restaurants []models.Restaurant, decks map[string][]models.Restaurant) error {
	restaurantsValue, err := attributevalue.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("failed to marshal restaurants: %w", err)
	}

	updateExpression := "SET #restaurants = :restaurants, #matches = :emptyList, #status = :active, #epoch = #epoch + :one"
	values := map[string]types.AttributeValue{
		":restaurants": restaurantsValue,
		":emptyList":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		":active":      &types.AttributeValueMemberS{Value: models.StatusActive},
		":one":         numberValue(1),
		":zero":        numberValue(0),
		":emptyMap":    &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
	}
	names := map[string]string{
		"#restaurants": "restaurants",
		"#matches":     "matches",
		"#status":      "status",
		"#epoch":       "epoch",
		"#users":       "users",
		"#deck":        "personalDeck",
		"#cursor":      "currentIndex",
		"#swipes":      "swipes",
	}

	i := 0
	for participantID, deck := range decks {
		deckValue, err := attributevalue.Marshal(deck)
		if err != nil {
			return fmt.Errorf("failed to marshal deck for %s: %w", participantID, err)
		}
		uid := fmt.Sprintf("#u%d", i)
		dv := fmt.Sprintf(":d%d", i)
		names[uid] = participantID
		values[dv] = deckValue
		updateExpression += fmt.Sprintf(", #users.%s.#deck = %s, #users.%s.#cursor = :zero, #users.%s.#swipes = :emptyMap", uid, dv, uid, uid)
		i++
	}

	if _, err := s.Dynamo.UpdateItem(ctx, s.Table, updateExpression, sessionKey(sessionID), values, names); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.Dynamo.DeleteItem(ctx, s.Table, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
