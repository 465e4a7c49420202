package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"mini-mc-server/internal/command"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/session"
	"mini-mc-server/internal/stats"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type HandlerConfig struct {
	QueueSize      int
	WriteTimeout   time.Duration
	ReadLimit      int64
	AllowedOrigins []string
	Observer       Observer
	Logger         *zap.Logger
}

// Handler upgrades /ws requests and binds each connection to its player's
// session window.
type Handler struct {
	sessions *session.Manager
	commands *command.Registry
	cfg      HandlerConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu     sync.Mutex
	active map[string]*Client
}

func NewHandler(sessions *session.Manager, commands *command.Registry, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 4096
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	h := &Handler{
		sessions: sessions,
		commands: commands,
		cfg:      cfg,
		logger:   cfg.Logger,
		active:   make(map[string]*Client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range h.cfg.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (h *Handler) claim(name string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := strings.ToLower(name)
	if _, ok := h.active[key]; ok {
		return false
	}
	h.active[key] = c
	return true
}

func (h *Handler) release(name string) {
	h.mu.Lock()
	delete(h.active, strings.ToLower(name))
	h.mu.Unlock()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("player")
	if name == "" {
		http.Error(w, "missing player", http.StatusBadRequest)
		return
	}

	kind, ok := session.ParseWindowKind(r.URL.Query().Get("window"))
	if !ok {
		http.Error(w, "unknown window", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.OpenKind(name, kind)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrSessionLimit) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("player", name), zap.Error(err))
		return
	}
	conn.SetReadLimit(h.cfg.ReadLimit)

	logger := h.logger.With(zap.String("player", sess.Player.Name), zap.String("session", sess.ID.String()))
	client := newClient(conn, h.cfg.QueueSize, h.cfg.WriteTimeout, h.cfg.Observer, logger)
	if !h.claim(name, client) {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "already connected")
		if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
			logger.Debug("write close frame failed", zap.Error(err))
		}
		conn.Close()
		return
	}
	defer h.disconnect(sess, client)

	go client.writePump()
	if err := sess.Attach(client); err != nil {
		logger.Warn("attach failed", zap.Error(err))
		return
	}
	logger.Info("client connected")

	h.readLoop(r.Context(), sess, client, conn)
}

func (h *Handler) disconnect(sess *session.Session, client *Client) {
	sess.Detach(client)
	client.Close()
	h.release(sess.Player.Name)
	if err := h.sessions.Close(sess.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		h.logger.Warn("close session", zap.Error(err))
	}
	client.logger.Info("client disconnected")
}

func (h *Handler) readLoop(ctx context.Context, sess *session.Session, client *Client, conn *websocket.Conn) {
	sender := &connSender{client: client, session: sess}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			client.logger.Debug("discarding malformed message", zap.Error(err))
			client.sendError(fmt.Errorf("malformed message"))
			continue
		}
		if err := h.handle(ctx, sess, sender, msg); err != nil {
			client.sendError(err)
		}

		select {
		case <-client.Done():
			return
		default:
		}
	}
}

func (h *Handler) handle(ctx context.Context, sess *session.Session, sender *connSender, msg ClientMessage) error {
	if msg.Point != nil {
		msg.Slot = sess.Window.SlotAt(mgl32.Vec2(*msg.Point))
		if msg.Slot < 0 {
			return fmt.Errorf("no slot at (%g, %g)", msg.Point[0], msg.Point[1])
		}
	}

	switch msg.Type {
	case TypeClick:
		_, err := sess.Click(msg.Slot, inventory.MouseButton(msg.Button), msg.Double)
		return err
	case TypeQuickMove:
		_, err := sess.QuickMove(msg.Slot)
		return err
	case TypeTake:
		amount := msg.Amount
		if amount <= 0 {
			amount = 1
		}
		_, err := sess.Take(msg.Slot, amount)
		return err
	case TypeCommand:
		return h.commands.Dispatch(ctx, sender, msg.Line)
	case TypeTab:
		sender.client.enqueue(ServerMessage{Type: TypeComplete, Suggestions: h.commands.Complete(sender, msg.Line)})
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// connSender issues commands on behalf of a connected player.
type connSender struct {
	client  *Client
	session *session.Session
}

func (s *connSender) Name() string           { return s.session.Player.Name }
func (s *connSender) SendMessage(msg string) { s.client.SendMessage(msg) }
func (s *connSender) IsOperator() bool       { return s.session.Player.Operator }

func (s *connSender) AddStat(a stats.Achievement, amount int) {
	s.session.Player.AddStat(a, amount)
}
