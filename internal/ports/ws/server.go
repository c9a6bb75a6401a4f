package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/config"
	"typerace/internal/domain"
	"typerace/internal/ports"
	"typerace/internal/protocol"
)

const maxMessageSize = 4096

var errLeft = errors.New("player left")

// Server exposes the room directory over HTTP and websockets.
type Server struct {
	dir          ports.RoomDirectory
	hub          *Hub
	logger       runtime.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pongTimeout  time.Duration
}

// NewServer wires a hub for dir.
func NewServer(dir ports.RoomDirectory, logger runtime.Logger, cfg config.ServerConfig) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	s := &Server{
		dir:          dir,
		hub:          NewHub(logger, cfg.SendBuffer, cfg.PongTimeout*9/10),
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		pongTimeout:  cfg.PongTimeout,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// No configured origin means dev mode.
			return cfg.AllowedOrigin == "" || r.Header.Get("Origin") == cfg.AllowedOrigin
		},
	}
	return s
}

// Hub returns the server's gateway.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	id := s.dir.CreateRoom()
	s.logger.Info("handleCreateRoom: Created room %s", id)
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": id})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dir.Rooms())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("room")
	sess, err := s.dir.Session(roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	// A disconnected player may resume their tracker.
	playerID := q.Get("player")
	if playerID == "" || !sess.HasPlayer(playerID) || s.hub.IsConnected(roomID, playerID) {
		playerID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("handleWS: upgrade: %v", err)
		return
	}
	logger := s.logger.WithFields(map[string]interface{}{"room": roomID, "player": playerID, "name": q.Get("name")})

	c := s.hub.Attach(roomID, playerID, &socket{conn: conn, writeTimeout: s.writeTimeout})
	events, err := s.dir.Join(roomID, playerID, q.Get("name"))
	if err != nil {
		logger.Info("handleWS: join rejected: %v", err)
		s.hub.SendError(roomID, playerID, err)
		s.hub.Detach(c)
		return
	}
	s.hub.Deliver(roomID, events)
	s.hub.Send(roomID, playerID, protocol.MsgRoomState, protocol.Welcome{PlayerID: playerID, Room: sess.Snapshot()})
	logger.Debug("handleWS: joined")

	s.readLoop(conn, c, logger)
}

func (s *Server) readLoop(conn *websocket.Conn, c *client, logger runtime.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("readLoop: %v", err)
			}
			s.disconnect(c, logger)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongTimeout))

		if err := s.handleMessage(c.roomID, c.playerID, msg); errors.Is(err, errLeft) {
			s.hub.Detach(c)
			return
		}
	}
}

// handleMessage applies one inbound frame. Request errors are reported to the sender only.
func (s *Server) handleMessage(roomID, playerID string, msg []byte) error {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		s.hub.SendError(roomID, playerID, err)
		return nil
	}

	switch env.T {
	case protocol.MsgPing:
		ping, err := protocol.DecodePayload[protocol.Ping](env)
		if err != nil {
			s.hub.SendError(roomID, playerID, err)
			return nil
		}
		s.hub.Send(roomID, playerID, protocol.MsgPong, protocol.Pong{Nonce: ping.Nonce})
		return nil

	case protocol.MsgLeave:
		events, err := s.dir.Leave(roomID, playerID)
		if err != nil {
			s.hub.SendError(roomID, playerID, err)
			return nil
		}
		s.hub.Deliver(roomID, events)
		return errLeft
	}

	sess, err := s.dir.Session(roomID)
	if err != nil {
		s.hub.SendError(roomID, playerID, err)
		return nil
	}
	events, err := protocol.Apply(sess, playerID, env)
	if err != nil {
		s.hub.SendError(roomID, playerID, err)
		return nil
	}
	s.hub.Deliver(roomID, events)
	return nil
}

// disconnect keeps the player's tracker for a resume. Once nobody in the room is connected the
// remaining players are removed, which deletes the room.
func (s *Server) disconnect(c *client, logger runtime.Logger) {
	s.hub.Detach(c)
	if s.hub.IsConnected(c.roomID, c.playerID) {
		return // replaced by a newer connection
	}

	sess, err := s.dir.Session(c.roomID)
	if err != nil {
		return
	}
	events, err := sess.Disconnect(c.playerID)
	if err == nil {
		s.hub.Deliver(c.roomID, events)
	}

	if s.hub.Connected(c.roomID) > 0 {
		return
	}
	for _, p := range sess.Snapshot().Players {
		if _, err := s.dir.Leave(c.roomID, p.PlayerID); err != nil && domain.KindOf(err) != domain.KindNotFound {
			logger.Warn("disconnect: Failed to remove %s: %v", p.PlayerID, err)
		}
	}
	logger.Info("disconnect: Room %s closed with no live connections", c.roomID)
}

// SweepIdleRooms deletes rooms nobody joined within ttl, checking every ttl/2, until ctx is done.
func (s *Server) SweepIdleRooms(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.dir.ReapIdle(ttl) {
				s.logger.Info("SweepIdleRooms: Room %s closed, nobody joined", id)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
