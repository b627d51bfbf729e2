package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"patternhub/internal/catalog"
	"patternhub/internal/models"
	"patternhub/internal/services"
)

const (
	readDeadline  = 120 * time.Second
	pingInterval  = 30 * time.Second
	pingWriteWait = 10 * time.Second
)

// WebSocketHandler handles WebSocket connections for interactive
// catalog clients: search and snippet generation over a persistent
// socket, plus catalog_refreshed broadcasts when the catalog reloads.
type WebSocketHandler struct {
	connManager *services.ConnectionManager
	catalog     *services.CatalogService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(connManager *services.ConnectionManager, catalogService *services.CatalogService) *WebSocketHandler {
	return &WebSocketHandler{
		connManager: connManager,
		catalog:     catalogService,
	}
}

// Handle handles a new WebSocket connection
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	conn := &models.ClientConnection{
		ConnID:      uuid.New().String(),
		Conn:        c,
		ConnectedAt: time.Now(),
	}

	h.connManager.Add(conn)
	done := make(chan struct{})
	defer func() {
		close(done)
		h.connManager.Remove(conn.ConnID)
	}()

	c.SetReadDeadline(time.Now().Add(readDeadline))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(conn, done)

	h.readLoop(conn)
}

// pingLoop sends periodic pings so idle clients stay connected
func (h *WebSocketHandler) pingLoop(conn *models.ClientConnection, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.WriteMu.Lock()
			err := conn.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(pingWriteWait))
			conn.WriteMu.Unlock()
			if err != nil {
				log.Printf("⚠️ Ping failed for %s: %v", conn.ConnID, err)
				return
			}
		}
	}
}

// readLoop handles incoming messages from the client
func (h *WebSocketHandler) readLoop(conn *models.ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic in readLoop: %v", r)
		}
	}()

	for {
		_, raw, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("❌ WebSocket read error for %s: %v", conn.ConnID, err)
			}
			break
		}

		conn.Conn.SetReadDeadline(time.Now().Add(readDeadline))

		if m := services.GetMetrics(); m != nil {
			m.WebSocketMessages.WithLabelValues("received", "in").Inc()
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("⚠️  Invalid message format from %s: %v", conn.ConnID, err)
			conn.Send(models.ServerMessage{
				Type:  "error",
				Code:  "invalid_format",
				Error: "Invalid message format",
			})
			continue
		}

		switch msg.Type {
		case "ping":
			conn.Send(models.ServerMessage{Type: "pong", RequestID: msg.RequestID})
		case "search":
			h.handleSearch(conn, msg)
		case "generate":
			h.handleGenerate(conn, msg)
		default:
			log.Printf("⚠️  Unknown message type: %s", msg.Type)
			conn.Send(models.ServerMessage{
				Type:      "error",
				RequestID: msg.RequestID,
				Code:      codeValidation,
				Error:     fmt.Sprintf("Unknown message type %q", msg.Type),
			})
		}
	}
}

// handleSearch runs a catalog search and replies with a search_result
func (h *WebSocketHandler) handleSearch(conn *models.ClientConnection, msg models.ClientMessage) {
	req := models.SearchRequest{
		Query:      msg.Query,
		Category:   msg.Category,
		Difficulty: msg.Difficulty,
		Limit:      msg.Limit,
	}
	if req.Limit != nil && *req.Limit < 0 {
		conn.Send(models.ServerMessage{
			Type:      "error",
			RequestID: msg.RequestID,
			Code:      codeValidation,
			Error:     "limit must not be negative",
		})
		return
	}

	traceID := uuid.New().String()
	results := h.catalog.Search(context.Background(), req, traceID)

	h.send(conn, models.ServerMessage{
		Type:      "search_result",
		RequestID: msg.RequestID,
		Payload: models.SearchResponse{
			Patterns: catalog.Summarize(results),
			Count:    len(results),
		},
	})
}

// handleGenerate renders a snippet and replies with a snippet message
func (h *WebSocketHandler) handleGenerate(conn *models.ClientConnection, msg models.ClientMessage) {
	if msg.PatternID == "" {
		conn.Send(models.ServerMessage{
			Type:      "error",
			RequestID: msg.RequestID,
			Code:      codeValidation,
			Error:     "pattern_id is required",
		})
		return
	}

	traceID := uuid.New().String()
	req := models.GenerateRequest{
		PatternID:     msg.PatternID,
		Name:          msg.Name,
		Input:         msg.Input,
		ModuleType:    msg.ModuleType,
		EffectVersion: msg.EffectVersion,
	}

	p, snippet, err := h.catalog.Generate(context.Background(), req, traceID)
	if err != nil {
		code := codeInvalidPattern
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			code = codeNotFound
		case errors.Is(err, catalog.ErrUnsupportedModuleType):
			code = codeUnsupportedOption
		}
		conn.Send(models.ServerMessage{
			Type:      "error",
			RequestID: msg.RequestID,
			Code:      code,
			Error:     err.Error(),
		})
		return
	}

	h.send(conn, models.ServerMessage{
		Type:      "snippet",
		RequestID: msg.RequestID,
		Payload: models.GenerateResponse{
			PatternID:   p.ID,
			Title:       p.Title,
			Snippet:     snippet,
			TraceID:     traceID,
			TemplateURI: fmt.Sprintf("pattern://%s/snippet", p.ID),
		},
	})
}

func (h *WebSocketHandler) send(conn *models.ClientConnection, msg models.ServerMessage) {
	if err := conn.Send(msg); err != nil {
		log.Printf("❌ WebSocket write error for %s: %v", conn.ConnID, err)
		return
	}
	if m := services.GetMetrics(); m != nil {
		m.WebSocketMessages.WithLabelValues(msg.Type, "out").Inc()
	}
}
