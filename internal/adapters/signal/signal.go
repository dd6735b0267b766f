// Package signal is the WebSocket transport for quiz rooms. It owns the
// connections; the gateway never touches a socket directly.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/app"
	"github.com/chancia/quizlive/internal/config"
	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type QuizWSController struct {
	Gw      *app.Gateway
	Limiter *ChatRateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewQuizWSController(gw *app.Gateway, cfg *config.Config) *QuizWSController {
	return &QuizWSController{
		Gw:         gw,
		Limiter:    NewChatRateLimiter(10, 10*time.Second),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleQuiz upgrades the connection and runs the pumps. The client token
// cookie is the member identity for the life of this connection.
func (ctl *QuizWSController) HandleQuiz(ctx context.Context, c *gin.Context) {
	sid := domain.MemberID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Gw.OnConnect(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
