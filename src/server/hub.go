package server

import (
	"encoding/json"
	"net/http"

	"macro-observer/src/engine"
	"macro-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas replaces the held state without broadcasting. The render
// cycle publishes whole snapshots, so there is nothing to merge.
func (s *DashboardServer) UpdateAllDatas(data *models.MLatestData) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.latestState = data
}

// -----------------------------------------------------------------------------

// Broadcast queues a snapshot for all connected clients.
func (s *DashboardServer) Broadcast(message *models.MLatestData) {
	// The Hub stores the state itself; senders only enqueue. With a 256
	// message buffer a blocked send means every consumer is dead anyway.
	s.broadcast <- message
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
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	response := s.subscribeResponse(cmd.Panels, cmd.Metrics)
	s.stateMutex.RUnlock()

	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- response:
	default:
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// subscribeResponse narrows the current snapshot to the panels and metric
// names a client asked for. Empty filters mean everything; the shared date
// grid always travels in full because every column indexes into it.
func (s *DashboardServer) subscribeResponse(panels, metrics []string) *models.MLatestData {
	state := s.latestState
	if state.Table == nil || (len(panels) == 0 && len(metrics) == 0) {
		return &models.MLatestData{
			Type:            "INITIAL",
			Table:           state.Table,
			Cards:           state.Cards,
			Failures:        state.Failures,
			Timestamp:       state.Timestamp,
			PipelineMetrics: state.PipelineMetrics,
		}
	}

	keep := func(column string) bool {
		if contains(metrics, column) {
			return true
		}
		panel, ok := engine.MetricPanel(column)
		return ok && contains(panels, panel)
	}

	filtered := models.NewMacroTable(state.Table.Dates)
	for _, name := range state.Table.ColumnOrder {
		if !keep(name) {
			continue
		}
		col, _ := state.Table.Column(name)
		filtered.AddColumn(name, col)
	}

	var cards []models.MMetricCard
	for _, card := range state.Cards {
		if keep(card.Name) {
			cards = append(cards, card)
		}
	}

	return &models.MLatestData{
		Type:            "INITIAL",
		Table:           filtered,
		Cards:           cards,
		Failures:        state.Failures,
		Timestamp:       state.Timestamp,
		PipelineMetrics: state.PipelineMetrics,
	}
}
