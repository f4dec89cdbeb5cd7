package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 64 << 10
	flowBudget = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware owns origin policy
	},
}

// ClientMessage is sent by the browser
type ClientMessage struct {
	Type   string `json:"type"`
	NodeID string `json:"nodeId,omitempty"`
	Event  string `json:"event,omitempty"`
	Value  any    `json:"value,omitempty"`
	Path   string `json:"path,omitempty"`
	Flow   string `json:"flow,omitempty"`
}

// ServerMessage is sent to the browser
type ServerMessage struct {
	Type      string                 `json:"type"`
	Session   *runtime.Info          `json:"session,omitempty"`
	Event     *runtime.Event         `json:"event,omitempty"`
	Nodes     []runtime.RenderedNode `json:"components,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	sessions *runtime.Manager
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *runtime.Manager, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, logger: logger, metrics: metrics}
}

// conn serializes writes on one socket
type conn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(msg ServerMessage) error {
	msg.Timestamp = time.Now().Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", msg.Type)
	}
	return c.ws.WriteJSON(msg)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *conn) sendError(message string) error {
	return c.send(ServerMessage{Type: "error", Message: message})
}

// HandleConnection upgrades the request and streams the session
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	log := h.logger.With(zap.String("session_id", sessionID.String()))
	log.Info("Stream opened")
	defer log.Info("Stream closed")

	out := &conn{ws: ws, metrics: h.metrics}
	events, cancel := session.Subscribe()
	defer cancel()

	info := session.Info()
	nodes, _ := session.Render()
	if err := out.send(ServerMessage{Type: "connected", Session: &info, Nodes: nodes}); err != nil {
		return
	}

	ctx, stop := context.WithCancel(c.Request.Context())
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.pump(ctx, out, events, log)
	}()

	ws.SetReadLimit(maxMessage)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("WebSocket read error", zap.Error(err))
			}
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}
		h.handle(ctx, out, session, msg)
	}

	stop()
	wg.Wait()
}

// pump forwards session events and keeps the connection alive
func (h *Handler) pump(ctx context.Context, out *conn, events <-chan runtime.Event, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = out.send(ServerMessage{Type: "closed", Message: "session closed"})
				_ = out.ws.Close()
				return
			}
			if err := out.send(ServerMessage{Type: string(ev.Type), Event: &ev}); err != nil {
				log.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := out.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handle(ctx context.Context, out *conn, session *runtime.Session, msg ClientMessage) {
	var err error
	switch msg.Type {
	case "ping":
		_ = out.send(ServerMessage{Type: "pong"})
		return
	case "render":
		var nodes []runtime.RenderedNode
		if nodes, err = session.Render(); err == nil {
			info := session.Info()
			_ = out.send(ServerMessage{Type: "render", Session: &info, Nodes: nodes})
		}
	case "fire", "run":
		// Runs that started report their outcome as a flow event.
		runCtx, cancel := context.WithTimeout(ctx, flowBudget)
		var result engine.FlowResult
		if msg.Type == "fire" {
			result, err = session.Fire(runCtx, msg.NodeID, msg.Event)
		} else {
			result, err = session.RunFlow(runCtx, msg.Flow)
		}
		cancel()
		if result.RunID != "" {
			return
		}
	case "set":
		err = session.SetValue(msg.NodeID, msg.Value)
	case "navigate":
		err = session.Navigate(msg.Path)
	default:
		_ = out.sendError("unknown message type")
		return
	}
	if err != nil {
		_ = out.sendError(err.Error())
	}
}
