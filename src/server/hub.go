package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"stockstreamer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errQueueFull = errors.New("dashboard broadcast queue full, round dropped")

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			initial := s.snapshotFor(client)
			s.stateMutex.Unlock()

			if len(initial) > 0 {
				client.send <- &models.MLatestData{Type: "INITIAL", Batches: initial}
			}

		case client := <-s.unregister:
			s.stateMutex.Lock()
			s.dropClient(client)
			s.stateMutex.Unlock()

		case batch := <-s.broadcast:
			s.stateMutex.Lock()
			s.latest[batch.Kind] = batch

			for client := range s.clients {
				filtered := client.filter(batch)
				if filtered == nil {
					continue
				}
				select {
				case client.send <- &models.MLatestData{Type: "UPDATE", Batches: []*models.FetchBatch{filtered}}:
				default:
					// slow consumer
					s.dropClient(client)
				}
			}
			s.stateMutex.Unlock()

		case <-s.done:
			s.stateMutex.Lock()
			for client := range s.clients {
				s.dropClient(client)
			}
			s.stateMutex.Unlock()
			return
		}
	}
}

// dropClient must be called with stateMutex held.
func (s *DashboardServer) dropClient(client *Client) {
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// snapshotFor returns the latest batch of every kind as seen through the
// client's subscription. Must be called with stateMutex held.
func (s *DashboardServer) snapshotFor(client *Client) []*models.FetchBatch {
	var out []*models.FetchBatch
	for _, kind := range models.AllKinds {
		if b, ok := s.latest[kind]; ok {
			if filtered := client.filter(b); filtered != nil {
				out = append(out, filtered)
			}
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Round publishing
// -----------------------------------------------------------------------------

// Publish queues a finished round for broadcast. It never waits for clients.
func (s *DashboardServer) Publish(ctx context.Context, batch *models.FetchBatch) error {
	select {
	case <-s.done:
		return nil
	default:
	}

	select {
	case s.broadcast <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errQueueFull
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	s.Logger.Debug("Client %s connected from %s", client.id, c.ClientIP())
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command and answers with the
// current state seen through the new subscription.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse command from %s: %v, disconnecting client", client.id, err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	client.subscribe(cmd.Symbols, cmd.Kinds)

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	if _, ok := s.clients[client]; !ok {
		return
	}

	select {
	case client.send <- &models.MLatestData{Type: "INITIAL", Batches: s.snapshotFor(client)}:
	default:
	}
}
