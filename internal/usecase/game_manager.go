package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/kuba-backend/internal/apperror"
	"github.com/rocketscienceinc/kuba-backend/internal/entity"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
	"github.com/rocketscienceinc/kuba-backend/internal/pkg"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager - runs games stored in the repositories. Moves on the same game are serialized.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// seating guards the check-then-seat sequence of CreateGame
	seating sync.Mutex
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		locks: make(map[string]*sync.Mutex),
	}
}

func (that *GameManager) CreateGame(ctx context.Context, first, second kuba.Player) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	engine, err := kuba.NewGame(first, second)
	if err != nil {
		return nil, fmt.Errorf("invalid players: %w", err)
	}

	that.seating.Lock()
	defer that.seating.Unlock()

	for _, player := range []kuba.Player{first, second} {
		if err = that.ensureFree(ctx, player.Name); err != nil {
			return nil, err
		}
	}

	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, fmt.Errorf("error generating game ID: %w", err)
	}

	game := entity.NewGame(gameID, engine)
	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	for _, player := range game.Players {
		if err = that.updatePlayer(ctx, player); err != nil {
			return nil, err
		}
	}

	log.Info("game created", "gameID", game.ID, "white", colorOwner(game, kuba.White), "black", colorOwner(game, kuba.Black))

	return game, nil
}

// MakeMove - applies a move for the player in their current game. A rejected move returns the
// unchanged game together with the reason.
func (that *GameManager) MakeMove(ctx context.Context, playerID string, move kuba.Move) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "playerID", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	unlock := that.lockGame(player.GameID)
	defer unlock()

	game, err := that.currentGame(ctx, player)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmPlayable(); err != nil {
		return game, err
	}

	if err = game.Engine.MakeMove(player.ID, move.Position, move.Direction); err != nil {
		log.Debug("move rejected", "gameID", game.ID, "move", move, "error", err)

		return game, fmt.Errorf("invalid move: %w", err)
	}

	game.UpdateGameState()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Info("move accepted", "gameID", game.ID, "row", move.Position.Row, "column", move.Position.Column, "direction", move.Direction.String())

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner)
		that.releasePlayers(ctx, game)
	}

	return game, nil
}

// LegalMoves - moves the player could make right now.
func (that *GameManager) LegalMoves(ctx context.Context, playerID string) ([]kuba.Move, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	game, err := that.currentGame(ctx, player)
	if err != nil {
		return nil, err
	}

	if game.Engine == nil {
		return nil, entity.ErrNoEngine
	}

	return game.Engine.LegalMoves(player.ID), nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return that.getGameByID(ctx, id)
}

// DeleteGame - drops a game, finished or not, and frees its players.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	log := that.logger.With("method", "DeleteGame", "gameID", id)

	unlock := that.lockGame(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return err
	}

	that.releasePlayers(ctx, game)

	if err = that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	log.Info("game deleted")

	return nil
}

// ensureFree - a player can join a new game unless the game they are seated in is still running.
// A seat in a game that has expired or finished does not count.
func (that *GameManager) ensureFree(ctx context.Context, playerID string) error {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	if !player.InGame() {
		return nil
	}

	game, err := that.currentGame(ctx, player)
	if errors.Is(err, apperror.ErrNotInGame) {
		return nil
	}

	if err != nil {
		return err
	}

	if game.IsFinished() {
		return nil
	}

	return fmt.Errorf("%w: %s in game %s", apperror.ErrPlayerInGame, player.ID, player.GameID)
}

// currentGame - loads the game the player is seated in. Games expire on their own, so a seat
// pointing at a missing game is dropped and reported as ErrNotInGame.
func (that *GameManager) currentGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game, err := that.getGameByID(ctx, player.GameID)
	if !errors.Is(err, apperror.ErrGameNotFound) {
		return game, err
	}

	log := that.logger.With("method", "currentGame", "playerID", player.ID, "gameID", player.GameID)

	if err = that.playerRepo.DeleteByID(ctx, player.ID); err != nil && !errors.Is(err, apperror.ErrPlayerNotFound) {
		log.Error("failed to drop stale seat", "error", err)
	} else {
		log.Info("stale seat dropped")
	}

	return nil, fmt.Errorf("%w: game %s no longer exists", apperror.ErrNotInGame, player.GameID)
}

// releasePlayers - frees the players of a finished game so they can start a new one.
// The game itself stays stored until it expires.
func (that *GameManager) releasePlayers(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "releasePlayers", "gameID", game.ID)

	for _, player := range game.Players {
		released := &entity.Player{ID: player.ID}

		if err := that.playerRepo.CreateOrUpdate(ctx, released); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}
}

func (that *GameManager) lockGame(id string) func() {
	that.mu.Lock()
	lock, ok := that.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[id] = lock
	}
	that.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func colorOwner(game *entity.Game, color kuba.Cell) string {
	for _, player := range game.Players {
		if player.Color == color {
			return player.ID
		}
	}

	return ""
}
