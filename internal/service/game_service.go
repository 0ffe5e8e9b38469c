package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
)

const (
	gameRoundKeyPrefix = "game:round:"
	gameRoundTTL       = 30 * time.Minute
	gameTopicWordOrder = "word order"
)

// gameSentences holds the sentence pool per difficulty level. Level picks the
// closest pool at or below the user's skill level.
var gameSentences = map[int][]string{
	0: {
		"Ich heiße Anna.",
		"Der Hund schläft.",
		"Wir lernen Deutsch.",
		"Das Wetter ist schön.",
		"Sie trinkt einen Kaffee.",
	},
	3: {
		"Am Montag gehe ich ins Kino.",
		"Er hat gestern ein Buch gelesen.",
		"Kannst du mir bitte helfen?",
		"Wir fahren im Sommer nach Berlin.",
		"Das Kind spielt gern im Garten.",
	},
	6: {
		"Obwohl es regnete, gingen wir spazieren.",
		"Ich weiß nicht, ob er morgen kommen kann.",
		"Nachdem sie gegessen hatte, machte sie einen Spaziergang.",
		"Der Film, den wir gestern gesehen haben, war langweilig.",
		"Wenn ich mehr Zeit hätte, würde ich öfter kochen.",
	},
}

// GameRoundStore is the round state backend; Redis in production.
type GameRoundStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// GameService runs the sentence-order game: the user rebuilds a scrambled
// German sentence, and the outcome feeds word-order topic memory.
type GameService struct {
	store        GameRoundStore
	topicService *TopicMemoryService
	logger       zerolog.Logger
}

// NewGameService creates a new GameService.
func NewGameService(store GameRoundStore, topicService *TopicMemoryService, logger zerolog.Logger) *GameService {
	return &GameService{
		store:        store,
		topicService: topicService,
		logger:       logger.With().Str("service", "game").Logger(),
	}
}

// gameRound is the per-round state kept in Redis until the answer arrives.
type gameRound struct {
	UserID   uuid.UUID `json:"user_id"`
	Sentence string    `json:"sentence"`
	Level    int       `json:"level"`
}

// GameRoundResponse is the scrambled round handed to the client.
type GameRoundResponse struct {
	RoundID string   `json:"round_id"`
	Words   []string `json:"words"`
	Level   int      `json:"level"`
}

// StartRound picks a sentence for the user's skill level, scrambles it and
// stores the round.
func (s *GameService) StartRound(ctx context.Context, userID uuid.UUID, skillLevel int) (*GameRoundResponse, error) {
	if s.store == nil {
		return nil, errors.Internal("game store not configured")
	}

	level, pool := poolForLevel(skillLevel)
	// Package-level rand is safe for concurrent handlers.
	sentence := pool[rand.Intn(len(pool))]

	roundID := uuid.New().String()
	round := gameRound{UserID: userID, Sentence: sentence, Level: level}
	if err := s.store.SetJSON(ctx, gameRoundKeyPrefix+roundID, round, gameRoundTTL); err != nil {
		return nil, errors.InternalWrap("failed to store game round", err)
	}

	return &GameRoundResponse{
		RoundID: roundID,
		Words:   scramble(sentence),
		Level:   level,
	}, nil
}

// poolForLevel returns the hardest sentence pool at or below the skill level.
func poolForLevel(skillLevel int) (int, []string) {
	best := 0
	for level := range gameSentences {
		if level <= skillLevel && level > best {
			best = level
		}
	}
	return best, gameSentences[best]
}

// scrambleAttempts bounds the reroll loop; a sentence whose words are all
// identical can never differ from the original order.
const scrambleAttempts = 10

// scramble shuffles the sentence's words, rerolling until the order differs
// from the original or the attempt budget runs out.
func scramble(sentence string) []string {
	words := strings.Fields(sentence)
	if len(words) < 2 {
		return words
	}

	shuffled := make([]string, len(words))
	copy(shuffled, words)
	for attempt := 0; attempt < scrambleAttempts; attempt++ {
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for i := range words {
			if shuffled[i] != words[i] {
				return shuffled
			}
		}
	}
	return shuffled
}

// GameResultResponse is the graded outcome of a round.
type GameResultResponse struct {
	Correct  bool   `json:"correct"`
	Sentence string `json:"sentence"`
}

// SubmitRound grades the user's word order, deletes the round and records the
// outcome under the word-order topic.
func (s *GameService) SubmitRound(ctx context.Context, userID uuid.UUID, roundID string, words []string) (*GameResultResponse, error) {
	if s.store == nil {
		return nil, errors.Internal("game store not configured")
	}
	if len(words) == 0 {
		return nil, errors.Validation("words are required")
	}

	key := gameRoundKeyPrefix + roundID
	var round gameRound
	if err := s.store.GetJSON(ctx, key, &round); err != nil {
		if err == client.ErrCacheMiss {
			return nil, errors.NotFound("game round")
		}
		return nil, errors.InternalWrap("failed to load game round", err)
	}
	if round.UserID != userID {
		return nil, errors.Forbidden("game round belongs to another user")
	}

	correct := gradeOrder(words, round.Sentence)

	if err := s.store.Del(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("round_id", roundID).Msg("Failed to delete game round")
	}

	if s.topicService != nil {
		if err := s.topicService.RecordOutcome(ctx, userID, gameTopicWordOrder, round.Level, correct); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record game outcome")
		}
	}

	return &GameResultResponse{Correct: correct, Sentence: round.Sentence}, nil
}
