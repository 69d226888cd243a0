package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"

	"github.com/ccheshirecat/routeassist/internal/hostcheck"
)

const (
	hostCheckWriteWait = 10 * time.Second
	hostCheckBuffer    = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleHostCheck streams debounced lookup results for the hostnames a
// client sends, one text frame per edit of its Host field.
func (h *Handler) handleHostCheck(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("hostcheck upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := "unknown"
	if id, err := uuid.NewV4(); err == nil {
		session = id.String()
	}
	logger := h.logger.With("session", session)

	results := make(chan hostcheck.Result, hostCheckBuffer)
	checker, err := h.controller.NewChecker(hostcheck.Options{
		Delay:   h.debounce,
		Timeout: h.timeout,
		Logger:  logger,
		OnResult: func(res hostcheck.Result) {
			select {
			case results <- res:
			default:
				logger.Warn("hostcheck result dropped", "host", res.Host)
			}
		},
	})
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(hostCheckWriteWait))
		return
	}
	defer checker.Close()

	logger.Debug("hostcheck session opened")
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case res := <-results:
				_ = conn.SetWriteDeadline(time.Now().Add(hostCheckWriteWait))
				if err := conn.WriteJSON(res); err != nil {
					logger.Debug("hostcheck write failed", "error", err)
					return
				}
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if host := strings.TrimSpace(string(data)); host != "" {
			checker.Check(host)
		}
	}

	checker.Close()
	close(stop)
	<-done
	logger.Debug("hostcheck session closed")
}
