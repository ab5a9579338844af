package websocketPkg

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// IEmbedBridge is the client side of an external face-embedding service.
// The service receives a JPEG face crop as one binary frame and answers
// with a JSON embedding vector.
type IEmbedBridge interface {
	EmbedFace(frame []byte) ([]float32, error)
	IsConnected() bool
	Reconnect() error
	CloseConnection()
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

type embedBridgeClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewEmbedBridgeClient dials FACE_EMBED_WS_URL in the background. A missing
// URL or a failed dial is not fatal; the bridge reports disconnected and
// callers fall back to local capability.
func NewEmbedBridgeClient() IEmbedBridge {
	client := &embedBridgeClient{
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground()

	return client
}

func (c *embedBridgeClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		log.Printf("Initial connection to embedding service failed: %v. Will retry on demand.", err)
	} else {
		log.Printf("Successfully connected to embedding service")
	}
}

func (c *embedBridgeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *embedBridgeClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := os.Getenv("FACE_EMBED_WS_URL")
	if url == "" {
		return fmt.Errorf("FACE_EMBED_WS_URL not configured")
	}

	log.Printf("Connecting to embedding service at %s", url)

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn

	go c.keepAlive()

	return nil
}

func (c *embedBridgeClient) CloseConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *embedBridgeClient) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()

		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(
			websocket.PingMessage,
			[]byte{},
			time.Now().Add(c.writeTimeout),
		)

		if err != nil {
			log.Printf("Ping to embedding service failed, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *embedBridgeClient) EmbedFace(frame []byte) ([]float32, error) {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("cannot connect to embedding service: %w", err)
		}
		c.mu.Lock()
	}

	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("not connected to embedding service")
	}

	// The service answers frames in arrival order, so the write and the
	// read form one exchange under the lock. Releasing between them lets a
	// concurrent caller consume this caller's embedding.
	defer c.mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending face frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading embedding response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result embedResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling embedding response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("embedding service error: %s", result.Error)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}

	return result.Embedding, nil
}
