package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

const (
	wsMaxPayloadBytes = 64 << 10
	wsPongWait        = 60 * time.Second
	wsPingPeriod      = wsPongWait * 9 / 10
	wsWriteWait       = 10 * time.Second
)

// Frame types sent to WebSocket clients.
const (
	FrameResult = "result"
	FrameDiff   = "diff"
	FrameError  = "error"
)

// Frame is one server-to-client WebSocket message.
type Frame struct {
	Type   string                `json:"type"`
	Result *domain.RoutingResult `json:"result,omitempty"`
	Diff   json.RawMessage       `json:"diff,omitempty"`
	Error  string                `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type wsSession struct {
	server *Server
	conn   *websocket.Conn
	id     string
	send   chan Frame
	ctx    context.Context
	cancel context.CancelFunc
}

// ServeWebSocket handles GET /ws/{session_id}. Clients send {"message": "..."}
// or plain text; every reply is a result frame and every commit on the session,
// from any client, is pushed as a diff frame.
func (s *Server) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "session_id", sessionID, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	ws := &wsSession{
		server: s,
		conn:   conn,
		id:     sessionID,
		send:   make(chan Frame, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	ws.run()
}

func (ws *wsSession) run() {
	diffs, unsubscribe := ws.server.Streams.Subscribe(ws.id)
	defer unsubscribe()
	defer ws.close()

	ws.server.logger.Debug("WebSocket connected", "session_id", ws.id)
	go ws.writeLoop(diffs)
	ws.readLoop()
	ws.server.logger.Debug("WebSocket disconnected", "session_id", ws.id)
}

func (ws *wsSession) close() {
	ws.cancel()
	_ = ws.conn.Close()
}

func (ws *wsSession) readLoop() {
	ws.conn.SetReadLimit(wsMaxPayloadBytes)
	_ = ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, data, err := ws.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		msg := decodeWSMessage(data)
		if msg == "" {
			continue
		}

		result, err := ws.server.process(ws.ctx, ws.id, msg)
		if err != nil {
			if ws.ctx.Err() != nil {
				return
			}
			ws.server.logger.Warn("WebSocket message failed", "session_id", ws.id, "err", err)
			ws.enqueue(Frame{Type: FrameError, Error: err.Error()})
			continue
		}
		ws.enqueue(Frame{Type: FrameResult, Result: &result})
	}
}

func (ws *wsSession) enqueue(f Frame) {
	select {
	case ws.send <- f:
	case <-ws.ctx.Done():
	}
}

func (ws *wsSession) writeLoop(diffs <-chan []byte) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer ws.close()

	for {
		var (
			frame Frame
			ok    bool
		)
		select {
		case <-ws.ctx.Done():
			return
		case frame = <-ws.send:
		case frame.Diff, ok = <-diffs:
			if !ok {
				return
			}
			frame.Type = FrameDiff
		case <-ticker.C:
			_ = ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		_ = ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := ws.conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

// decodeWSMessage accepts {"message": "..."} or raw text.
func decodeWSMessage(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var in struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &in); err == nil {
			return strings.TrimSpace(in.Message)
		}
	}
	return trimmed
}
