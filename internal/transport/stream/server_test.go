package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/kuba-backend/internal/apperror"
	"github.com/rocketscienceinc/kuba-backend/internal/entity"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
)

type mockGameUseCase struct {
	mock.Mock
}

func (m *mockGameUseCase) CreateGame(ctx context.Context, first, second kuba.Player) (*entity.Game, error) {
	args := m.Called(ctx, first, second)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *mockGameUseCase) MakeMove(ctx context.Context, playerID string, move kuba.Move) (*entity.Game, error) {
	args := m.Called(ctx, playerID, move)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *mockGameUseCase) LegalMoves(ctx context.Context, playerID string) ([]kuba.Move, error) {
	args := m.Called(ctx, playerID)
	moves, _ := args.Get(0).([]kuba.Move)
	return moves, args.Error(1)
}

func (m *mockGameUseCase) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *mockGameUseCase) DeleteGame(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	alice = kuba.Player{Name: "alice", Color: kuba.White}
	bob   = kuba.Player{Name: "bob", Color: kuba.Black}
)

func newGame(t *testing.T) *entity.Game {
	t.Helper()

	engine, err := kuba.NewGame(alice, bob)
	require.NoError(t, err)

	return entity.NewGame("g1", engine)
}

// serve runs the server over the given lines and decodes every response.
func serve(t *testing.T, useCase *mockGameUseCase, lines ...string) []ResponsePayload {
	t.Helper()

	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), useCase)

	var out bytes.Buffer
	err := server.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out)
	require.NoError(t, err)

	var responses []ResponsePayload

	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var msg Message
		require.NoError(t, decoder.Decode(&msg))

		var payload ResponsePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))

		responses = append(responses, payload)
	}

	return responses
}

func TestServer_NewGame(t *testing.T) {
	// Given: a use case that creates the game
	useCase := &mockGameUseCase{}
	game := newGame(t)
	useCase.On("CreateGame", mock.Anything, alice, bob).Return(game, nil).Once()

	// When: a game:new message arrives
	responses := serve(t, useCase,
		`{"action":"game:new","payload":{"players":[{"name":"alice","color":"W"},{"name":"bob","color":"B"}]}}`,
	)

	// Then: the new game is sent back
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Game)
	assert.Equal(t, "g1", responses[0].Game.ID)
	assert.Equal(t, kuba.NewBoard(), responses[0].Game.Engine.Board())
	assert.Empty(t, responses[0].Error)
	useCase.AssertExpectations(t)
}

func TestServer_Move(t *testing.T) {
	t.Run("Accepted move", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		game := newGame(t)
		require.NoError(t, game.Engine.MakeMove("alice", kuba.Position{Row: 6, Column: 5}, kuba.Forward))
		game.UpdateGameState()

		move := kuba.Move{Position: kuba.Position{Row: 6, Column: 5}, Direction: kuba.Forward}
		useCase.On("MakeMove", mock.Anything, "alice", move).Return(game, nil).Once()

		responses := serve(t, useCase,
			`{"action":"game:move","payload":{"player":"alice","move":{"position":{"row":6,"column":5},"direction":"F"}}}`,
		)

		require.Len(t, responses, 1)
		assert.Empty(t, responses[0].Error)
		assert.Equal(t, entity.StatusOngoing, responses[0].Game.Status)
		assert.Equal(t, "bob", responses[0].Game.Engine.CurrentTurn())
		useCase.AssertExpectations(t)
	})

	t.Run("Rejected move reports the reason", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		game := newGame(t)

		move := kuba.Move{Position: kuba.Position{Row: 6, Column: 5}, Direction: kuba.Right}
		useCase.On("MakeMove", mock.Anything, "alice", move).Return(game, kuba.ErrOwnMarblePushedOff).Once()

		responses := serve(t, useCase,
			`{"action":"game:move","payload":{"player":"alice","move":{"position":{"row":6,"column":5},"direction":"right"}}}`,
		)

		require.Len(t, responses, 1)
		assert.Contains(t, responses[0].Error, kuba.ErrOwnMarblePushedOff.Error())
		require.NotNil(t, responses[0].Game)
		assert.Equal(t, entity.StatusWaiting, responses[0].Game.Status)
	})

	t.Run("Unknown direction", func(t *testing.T) {
		useCase := &mockGameUseCase{}

		responses := serve(t, useCase,
			`{"action":"game:move","payload":{"player":"alice","move":{"position":{"row":6,"column":5},"direction":"up"}}}`,
		)

		require.Len(t, responses, 1)
		assert.Contains(t, responses[0].Error, kuba.ErrInvalidDirection.Error())
		useCase.AssertNotCalled(t, "MakeMove", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServer_Queries(t *testing.T) {
	// Given: a use case with a stored game
	useCase := &mockGameUseCase{}
	game := newGame(t)
	moves := []kuba.Move{{Position: kuba.Position{Row: 6, Column: 5}, Direction: kuba.Forward}}

	useCase.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()
	useCase.On("LegalMoves", mock.Anything, "alice").Return(moves, nil).Once()
	useCase.On("DeleteGame", mock.Anything, "g1").Return(nil).Once()
	useCase.On("GetGame", mock.Anything, "g2").Return(nil, apperror.ErrGameNotFound).Once()

	// When: several queries arrive, one per line
	responses := serve(t, useCase,
		`{"action":"game:get","payload":{"game_id":"g1"}}`,
		`{"action":"game:moves","payload":{"player":"alice"}}`,
		``,
		`{"action":"game:delete","payload":{"game_id":"g1"}}`,
		`{"action":"game:get","payload":{"game_id":"g2"}}`,
	)

	// Then: each one gets its answer in order, blank lines are skipped
	require.Len(t, responses, 4)
	assert.Equal(t, "g1", responses[0].Game.ID)
	assert.Equal(t, moves, responses[1].Moves)
	assert.Empty(t, responses[2].Error)
	assert.Contains(t, responses[3].Error, apperror.ErrGameNotFound.Error())
	useCase.AssertExpectations(t)
}

func TestServer_BadInput(t *testing.T) {
	useCase := &mockGameUseCase{}

	responses := serve(t, useCase,
		`not json`,
		`{"action":"game:jump"}`,
	)

	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].Error, "failed to unmarshal message")
	assert.Contains(t, responses[1].Error, ErrUnknownAction.Error())
}

func TestServer_StopsOnCancel(t *testing.T) {
	// Given: an input that stays open without sending anything
	reader, writer := io.Pipe()
	defer writer.Close()

	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), &mockGameUseCase{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Serve(ctx, reader, io.Discard)
	}()

	// When: the context is canceled
	cancel()

	// Then: Serve returns without waiting for input
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
