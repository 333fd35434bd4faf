package player_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/player"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, p *domain.Player) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*domain.Player, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Player), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) RefreshExpiry(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Register(t *testing.T) {
	repo := new(mockRepo)
	svc := player.NewService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Player")).Return(nil)

	p, err := svc.Register(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.Secret)
	repo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	stored := &domain.Player{ID: "p1", Secret: "topsecret", Username: "alice"}

	t.Run("correct secret", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Get", mock.Anything, "p1").Return(stored, nil)
		svc := player.NewService(repo)

		valid, err := svc.Validate(context.Background(), "p1", "topsecret")

		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Get", mock.Anything, "p1").Return(stored, nil)
		svc := player.NewService(repo)

		valid, err := svc.Validate(context.Background(), "p1", "guess")

		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("unknown player is invalid, not an error", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrPlayerNotFound)
		svc := player.NewService(repo)

		valid, err := svc.Validate(context.Background(), "ghost", "whatever")

		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Get", mock.Anything, "p1").Return(nil, errors.New("connection refused"))
		svc := player.NewService(repo)

		valid, err := svc.Validate(context.Background(), "p1", "topsecret")

		assert.Error(t, err)
		assert.False(t, valid)
	})
}

func TestService_RefreshExpiry(t *testing.T) {
	repo := new(mockRepo)
	repo.On("RefreshExpiry", mock.Anything, "p1").Return(nil)
	svc := player.NewService(repo)

	assert.NoError(t, svc.RefreshExpiry(context.Background(), "p1"))
	repo.AssertExpectations(t)
}
