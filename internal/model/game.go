package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/clonechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Rules are the session policies layered on top of the engine.
type Rules struct {
	// EnforceTurn rejects moves of the side that is not to move.
	EnforceTurn bool
	// HaltOnTerminal rejects moves after checkmate or stalemate.
	HaltOnTerminal bool
}

// The connections of the presentation clients watching a game
type GameConnections struct {
	connections map[string]*websocket.Conn // clientID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex
	sentVersion uint64 // guarded by writeMu
}

// Game wraps one engine. Every public method holds mu for its whole
// duration, so simulated moves are never observable from outside.
type Game struct {
	ID          string
	mu          sync.Mutex
	engine      *Engine
	rules       Rules
	version     uint64 // bumped by every applied move
	connections *GameConnections
	log         *zap.Logger
	createdAt   time.Time
	updatedAt   time.Time
}

// View is the JSON state sent to presentation clients.
type View struct {
	ID string `json:"id"`
	Snapshot
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewGame(id string, rules Rules, log *zap.Logger) *Game {
	return NewGameWithEngine(id, NewEngine(WithHaltOnTerminal(rules.HaltOnTerminal)), rules, log)
}

// NewGameWithEngine hosts an engine built elsewhere, e.g. from a layout.
func NewGameWithEngine(id string, engine *Engine, rules Rules, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now()
	return &Game{
		ID:          id,
		engine:      engine,
		rules:       rules,
		connections: NewGameConnections(),
		log:         log.With(zap.String("game_id", id)),
		createdAt:   now,
		updatedAt:   now,
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

func (g *Game) View() (view View, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.recoverInvariant(&err)

	return g.view(), nil
}

func (g *Game) view() View {
	return View{
		ID:        g.ID,
		Snapshot:  g.engine.Snapshot(),
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
}

// MakeMove applies req. An illegal move returns ErrIllegalMove together with
// a result carrying the unchanged state.
func (g *Game) MakeMove(req MoveRequest) (res MoveResult, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.recoverInvariant(&err)

	piece, err := g.resolvePiece(req)
	if err != nil {
		return MoveResult{}, err
	}
	if g.rules.HaltOnTerminal && g.engine.State().IsTerminal() {
		return MoveResult{Reason: ErrGameOver.Error(), State: g.view()}, ErrGameOver
	}
	if g.rules.EnforceTurn && piece.Side != g.engine.Turn() {
		return MoveResult{Reason: ErrNotYourTurn.Error(), State: g.view()}, ErrNotYourTurn
	}

	from := piece.Position
	if !g.engine.AttemptMove(piece.ID, req.To) {
		g.log.Debug("move_rejected",
			zap.Int("piece_id", int(piece.ID)),
			zap.String("from", from.String()),
			zap.String("to", req.To.String()),
		)
		return MoveResult{Reason: ErrIllegalMove.Error(), State: g.view()}, ErrIllegalMove
	}
	g.updatedAt = time.Now()
	g.version++

	view := g.view()
	g.log.Info("move_applied",
		zap.Int("piece_id", int(piece.ID)),
		zap.String("kind", string(piece.Kind)),
		zap.String("from", from.String()),
		zap.String("to", req.To.String()),
		zap.String("to_move", string(view.Turn)),
		zap.String("state", string(view.State)),
	)
	go g.broadcastState(view, g.version)
	return MoveResult{Applied: true, State: view}, nil
}

func (g *Game) resolvePiece(req MoveRequest) (Piece, error) {
	if req.PieceID != 0 {
		p, ok := g.engine.Piece(req.PieceID)
		if !ok || p.Captured {
			return Piece{}, fmt.Errorf("%w: id %d", ErrUnknownPiece, req.PieceID)
		}
		if req.From != nil && *req.From != p.Position {
			return Piece{}, fmt.Errorf("%w: piece %d is not on %s", ErrUnknownPiece, req.PieceID, *req.From)
		}
		return p, nil
	}
	if req.From == nil {
		return Piece{}, fmt.Errorf("%w: no piece selected", ErrUnknownPiece)
	}
	p, ok := g.engine.PieceAt(*req.From)
	if !ok {
		return Piece{}, fmt.Errorf("%w: no piece on %s", ErrUnknownPiece, *req.From)
	}
	return p, nil
}

// LegalTargets lists the destinations of a selected piece for highlighting.
func (g *Game) LegalTargets(id PieceID) (targets []Square, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.recoverInvariant(&err)

	p, ok := g.engine.Piece(id)
	if !ok || p.Captured {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownPiece, id)
	}
	targets = g.engine.LegalTargets(id)
	if targets == nil {
		targets = []Square{}
	}
	return targets, nil
}

// recoverInvariant turns an engine invariant panic into an error. Anything
// else keeps panicking.
func (g *Game) recoverInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	rerr, ok := r.(error)
	if !ok || !errors.Is(rerr, ErrKingNotFound) {
		panic(r)
	}
	g.log.Error("invariant_violation", zap.Error(rerr))
	*err = rerr
}

func (g *Game) RegisterConnection(clientID string, conn *websocket.Conn) error {
	connID := fmt.Sprintf("%p", conn)

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[clientID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		g.log.Warn("ws_duplicate_connection", zap.String("client_id", clientID), zap.String("conn", connID))
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		return errors.New("connection already exists")
	}
	g.connections.connections[clientID] = conn
	g.connections.mu.Unlock()
	g.log.Info("ws_connect", zap.String("client_id", clientID), zap.String("conn", connID))

	g.mu.Lock()
	view, version := g.view(), g.version
	g.mu.Unlock()
	go g.broadcastState(view, version)
	return nil
}

func (g *Game) UnregisterConnection(clientID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// Only unregister if this is still the current connection
	if current, exists := g.connections.connections[clientID]; exists && current == conn {
		delete(g.connections.connections, clientID)
		g.log.Info("ws_disconnect", zap.String("client_id", clientID))
	}
}

// Send writes msg to one client.
func (g *Game) Send(clientID string, msg ws.Message) error {
	g.connections.mu.RLock()
	conn, ok := g.connections.connections[clientID]
	g.connections.mu.RUnlock()
	if !ok {
		return fmt.Errorf("client %s not connected", clientID)
	}
	return g.connections.write(conn, msg)
}

func (c *GameConnections) write(conn *websocket.Conn, msg ws.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// broadcastState fans view out to every client. Broadcasts run on their own
// goroutines, so one that arrives after a newer version went out is dropped.
func (g *Game) broadcastState(view View, version uint64) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, view)
	if err != nil {
		g.log.Error("ws_marshal_state", zap.Error(err))
		return
	}

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	if version < g.connections.sentVersion {
		g.log.Debug("ws_stale_state_dropped", zap.Uint64("version", version))
		return
	}
	g.connections.sentVersion = version

	// Copy the connections so the registry lock is not held while writing
	g.connections.mu.RLock()
	active := make(map[string]*websocket.Conn, len(g.connections.connections))
	for clientID, conn := range g.connections.connections {
		active[clientID] = conn
	}
	g.connections.mu.RUnlock()

	for clientID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			g.log.Warn("ws_send_state", zap.String("client_id", clientID), zap.Error(err))
			g.UnregisterConnection(clientID, conn)
		}
	}
}
