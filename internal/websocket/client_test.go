// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupWebSocketServer creates a test WebSocket server with a custom handler
func setupWebSocketServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn)
	}))
}

// dialWebSocket establishes a WebSocket connection to the test server
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	return conn
}

// waitForChannel waits for a channel signal with timeout
func waitForChannel(t *testing.T, ch <-chan bool, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Errorf("%s: timeout after %v", msg, timeout)
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if a.hub != hub {
		t.Error("Client hub not set correctly")
	}
	if cap(a.send) != sendBuffer {
		t.Errorf("send capacity = %d, want %d", cap(a.send), sendBuffer)
	}
	if b.ID() <= a.ID() {
		t.Errorf("client IDs not increasing: %d then %d", a.ID(), b.ID())
	}
}

func TestClient_Enqueue(t *testing.T) {
	t.Parallel()

	client := createTestClient(NewHub(), 1)
	if !client.Enqueue(Message{Type: MessageTypeStatus}) {
		t.Fatal("Enqueue() into an empty buffer failed")
	}
	if client.Enqueue(Message{Type: MessageTypeStatus}) {
		t.Error("Enqueue() into a full buffer should fail")
	}
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		close func(hub *Hub, client *Client)
	}{
		{
			name:  "hub shutdown",
			close: func(hub *Hub, _ *Client) { hub.closeAllClients() },
		},
		{
			name:  "unregistered",
			close: func(hub *Hub, client *Client) { hub.removeClient(client) },
		},
		{
			name: "dropped as slow",
			close: func(hub *Hub, client *Client) {
				client.Enqueue(Message{Type: MessageTypeStatus})
				hub.broadcastToClients(Message{Type: MessageTypeProgress})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hub := NewHub()
			client := createTestClient(hub, 1)
			hub.addClient(client)
			tt.close(hub, client)

			if hub.GetClientCount() != 0 {
				t.Fatalf("client count = %d, want 0", hub.GetClientCount())
			}
			if client.Enqueue(Message{Type: MessageTypePong}) {
				t.Error("Enqueue() on a closed client should fail")
			}
			client.closeSend()
		})
	}
}

func TestClient_WritePump_SendMessage(t *testing.T) {
	t.Parallel()

	messageReceived := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("Failed to read message: %v", err)
			return
		}
		if msg.Type != MessageTypeProgress {
			t.Errorf("Expected message type %q, got %q", MessageTypeProgress, msg.Type)
		}
		messageReceived <- true
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(NewHub(), conn)
	go client.writePump()

	client.Enqueue(Message{Type: MessageTypeProgress, Data: map[string]int{"epoch": 1}})

	waitForChannel(t, messageReceived, time.Second, "Message not received")
}

func TestClient_ReadPump_PingPong(t *testing.T) {
	t.Parallel()

	hub := startHub(t)

	receivedPong := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
			t.Errorf("Failed to write ping: %v", err)
			return
		}

		var pong Message
		if err := conn.ReadJSON(&pong); err != nil {
			t.Errorf("Failed to read pong: %v", err)
			return
		}
		if pong.Type == MessageTypePong {
			receivedPong <- true
		}
		time.Sleep(50 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	waitForChannel(t, receivedPong, time.Second, "Pong not received")
}

func TestClient_WritePump_ChannelClose(t *testing.T) {
	t.Parallel()

	gotClose := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_, _, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure) {
			gotClose <- true
		}
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(NewHub(), conn)
	done := make(chan struct{})
	go func() {
		client.writePump()
		close(done)
	}()

	client.closeSend()

	waitForChannel(t, gotClose, time.Second, "Close frame not received")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("writePump did not return after the channel closed")
	}
}

func TestClient_Integration(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		client.Enqueue(Message{Type: MessageTypeStatus, Data: map[string]string{"state": "idle"}})
		hub.Register <- client
		client.Start()
	}))
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if first.Type != MessageTypeStatus {
		t.Fatalf("first message type = %q, want %q", first.Type, MessageTypeStatus)
	}

	waitForClients(t, hub, 1)
	hub.BroadcastRaw([]byte(`{"type":"progress","data":{"epoch":1,"epochs":8}}`))

	var progress struct {
		Type string `json:"type"`
		Data struct {
			Epoch  int `json:"epoch"`
			Epochs int `json:"epochs"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&progress); err != nil {
		t.Fatalf("read progress: %v", err)
	}
	if progress.Type != MessageTypeProgress || progress.Data.Epoch != 1 || progress.Data.Epochs != 8 {
		t.Errorf("progress = %+v", progress)
	}

	_ = conn.Close()
	waitForClients(t, hub, 0)
}
