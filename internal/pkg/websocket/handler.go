package websocket

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
)

var errHubStopped = errors.New("websocket hub stopped")

// Handler upgrades already-authorized requests and attaches them to the hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// Serve upgrades the connection and subscribes it to the class events.
// The caller must have checked that viewer may view the class.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, classID string, viewer models.Identity) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("classID", classID).
			Str("userID", viewer.ID).
			Msg("Failed to upgrade connection to WebSocket")
		return err
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		viewer:  viewer,
		classID: classID,
		logger:  h.logger,
	}
	if !h.hub.attach(client) {
		conn.Close()
		return errHubStopped
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("classID", classID).
		Str("userID", viewer.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
