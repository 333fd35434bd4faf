package game

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/pkg/uid"
)

type GameRepository interface {
	Create(ctx context.Context, g *domain.GameSession) error
	Get(ctx context.Context, id string) (*domain.GameSession, error)
	SetPlayerTwo(ctx context.Context, id, playerID string) (*domain.GameSession, error)
	UpdateState(ctx context.Context, expectedMoves int, g *domain.GameSession) (*domain.GameSession, error)
}

// PlayerValidator is the credential check plus the sliding-expiry
// refresh that follows every successful player action.
type PlayerValidator interface {
	Validate(ctx context.Context, id, secret string) (bool, error)
	RefreshExpiry(ctx context.Context, id string) error
}

// Archiver records finished games. Archiving is best-effort and never
// fails the move that finished the game.
type Archiver interface {
	SaveResult(g *domain.GameSession) error
}

// Service is the session directory: lifecycle operations over game
// sessions backed by the durable store.
type Service struct {
	repo        GameRepository
	players     PlayerValidator
	archive     Archiver // nil when no archive DB is configured
	gameTTL     time.Duration
	moveRetries int
}

func NewService(repo GameRepository, players PlayerValidator, archive Archiver, gameTTL time.Duration, moveRetries int) *Service {
	if moveRetries < 1 {
		moveRetries = 1
	}
	return &Service{
		repo:        repo,
		players:     players,
		archive:     archive,
		gameTTL:     gameTTL,
		moveRetries: moveRetries,
	}
}

// NewGame creates a session with the caller seated as player one. The
// expiry is fixed here and never extended by gameplay.
func (s *Service) NewGame(ctx context.Context, playerID, secret string) (*domain.GameSession, error) {
	if err := s.checkCredential(ctx, playerID, secret); err != nil {
		return nil, err
	}

	g := domain.NewGameSession(uid.NewID(), playerID, s.gameTTL)
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.refreshExpiry(ctx, playerID)
	log.Printf("[GAME] Created game %s for player %s", g.ID, playerID)
	return g, nil
}

// JoinGame seats a second player. The write is conditional on the seat
// still being empty, so of two concurrent joiners exactly one succeeds;
// the other re-reads and reports ErrSessionFull.
func (s *Service) JoinGame(ctx context.Context, gameID, playerID, secret string) (*domain.GameSession, error) {
	if err := s.checkCredential(ctx, playerID, secret); err != nil {
		return nil, err
	}

	var g *domain.GameSession
	var err error
	for attempt := 0; attempt < s.moveRetries; attempt++ {
		g, err = s.repo.SetPlayerTwo(ctx, gameID, playerID)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.refreshExpiry(ctx, playerID)
	log.Printf("[GAME] Player %s joined game %s", playerID, gameID)
	return g, nil
}

func (s *Service) GetGame(ctx context.Context, gameID string) (*domain.GameSession, error) {
	return s.repo.Get(ctx, gameID)
}

// MakeMove runs the read-compute-conditional-write cycle. The write is
// guarded on the MovesMade value read at the top of the cycle; a lost
// race re-reads and re-validates against the post-move board, and after
// the retry budget the caller sees ErrConflict.
func (s *Service) MakeMove(ctx context.Context, gameID, playerID, secret string, c domain.Coordinate) (*domain.GameSession, error) {
	if err := s.checkCredential(ctx, playerID, secret); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.moveRetries; attempt++ {
		g, err := s.repo.Get(ctx, gameID)
		if err != nil {
			return nil, err
		}

		prevMoves := g.MovesMade
		if err := g.ApplyMove(playerID, c); err != nil {
			return nil, err
		}

		updated, err := s.repo.UpdateState(ctx, prevMoves, g)
		if errors.Is(err, domain.ErrConflict) {
			log.Printf("[GAME] Move conflict on game %s (attempt %d), retrying", gameID, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.refreshExpiry(ctx, playerID)
		if updated.IsFinished() {
			s.archiveResult(updated)
		}
		return updated, nil
	}

	return nil, domain.ErrConflict
}

func (s *Service) checkCredential(ctx context.Context, playerID, secret string) error {
	valid, err := s.players.Validate(ctx, playerID, secret)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrInvalidCredential
	}
	return nil
}

// refreshExpiry failures are logged only: the action itself already
// succeeded durably.
func (s *Service) refreshExpiry(ctx context.Context, playerID string) {
	if err := s.players.RefreshExpiry(ctx, playerID); err != nil {
		log.Printf("[GAME] Failed to refresh expiry for player %s: %v", playerID, err)
	}
}

func (s *Service) archiveResult(g *domain.GameSession) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveResult(g); err != nil {
		log.Printf("[GAME] Failed to archive finished game %s: %v", g.ID, err)
	}
}
