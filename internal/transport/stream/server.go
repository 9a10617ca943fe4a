package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rocketscienceinc/kuba-backend/internal/entity"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
)

var ErrUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	CreateGame(ctx context.Context, first, second kuba.Player) (*entity.Game, error)
	MakeMove(ctx context.Context, playerID string, move kuba.Move) (*entity.Game, error)
	LegalMoves(ctx context.Context, playerID string) ([]kuba.Move, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type handler func(ctx context.Context, payload json.RawMessage) (ResponsePayload, error)

// Server reads one JSON message per line and answers each with one JSON line.
type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	handlers map[string]handler
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "stream"),
		game:   game,
	}

	server.handlers = map[string]handler{
		actionNewGame:    server.handleNewGame,
		actionMove:       server.handleMove,
		actionGetGame:    server.handleGetGame,
		actionLegalMoves: server.handleLegalMoves,
		actionDeleteGame: server.handleDeleteGame,
	}

	return server
}

// Serve - processes messages until the reader is exhausted or the context is canceled.
// Failed actions are reported to the writer and do not stop the loop.
func (that *Server) Serve(ctx context.Context, reader io.Reader, writer io.Writer) error {
	log := that.logger.With("method", "Serve")

	lines, readErr := readLines(ctx, reader)
	encoder := json.NewEncoder(writer)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read message: %w", err)
					}
				default:
				}

				return nil
			}

			response := that.process(ctx, line)
			if err := encoder.Encode(response); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}

			log.Debug("message processed", "action", response.Action)
		}
	}
}

// readLines - feeds non-empty lines from the reader so that a blocked read does not hold up
// cancellation.
func readLines(ctx context.Context, reader io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}

			line := append([]byte(nil), scanner.Bytes()...)

			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	return lines, readErr
}

func (that *Server) process(ctx context.Context, line []byte) Message {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return errorMessage("", fmt.Errorf("failed to unmarshal message: %w", err))
	}

	handle, ok := that.handlers[msg.Action]
	if !ok {
		return errorMessage(msg.Action, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action))
	}

	payload, err := handle(ctx, msg.Payload)
	if err != nil {
		that.logger.Info("action failed", "action", msg.Action, "error", err)
		payload.Error = err.Error()
	}

	return Message{Action: msg.Action, Payload: mustMarshal(payload)}
}

func errorMessage(action string, err error) Message {
	return Message{Action: action, Payload: mustMarshal(ResponsePayload{Error: err.Error()})}
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
