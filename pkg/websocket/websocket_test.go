package websocketPkg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// embedServer answers each binary frame with an embedding derived from the
// frame's payload, sleeping first when asked, so a mispaired response is
// detectable by value.
func embedServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if strings.HasPrefix(string(frame), "slow") {
				time.Sleep(150 * time.Millisecond)
			}

			resp, err := json.Marshal(embedResponse{
				Embedding: []float32{float32(len(frame))},
			})
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
				return
			}
		}
	}))
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestEmbedFaceConcurrentCallersGetOwnEmbedding(t *testing.T) {
	srv := embedServer(t)
	defer srv.Close()

	t.Setenv("FACE_EMBED_WS_URL", wsURL(srv.URL))

	bridge := NewEmbedBridgeClient()
	defer bridge.CloseConnection()
	require.Eventually(t, bridge.IsConnected, 2*time.Second, 10*time.Millisecond)

	// Frame lengths differ, so each caller can recognize its own answer.
	frames := [][]byte{[]byte("slow-caller"), []byte("hi")}

	results := make([][]float32, len(frames))
	errs := make([]error, len(frames))

	var wg sync.WaitGroup
	for i := range frames {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = bridge.EmbedFace(frames[i])
		}(i)
	}
	wg.Wait()

	for i, frame := range frames {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
		require.Equal(t, float32(len(frame)), results[i][0])
	}
}

func TestEmbedFaceReconnectsOnDemand(t *testing.T) {
	srv := embedServer(t)
	defer srv.Close()

	t.Setenv("FACE_EMBED_WS_URL", wsURL(srv.URL))

	bridge := NewEmbedBridgeClient()
	defer bridge.CloseConnection()
	require.Eventually(t, bridge.IsConnected, 2*time.Second, 10*time.Millisecond)

	bridge.CloseConnection()
	require.False(t, bridge.IsConnected())

	embedding, err := bridge.EmbedFace([]byte("after-drop"))
	require.NoError(t, err)
	require.Equal(t, []float32{float32(len("after-drop"))}, embedding)
}

func TestEmbedFaceWithoutServiceURL(t *testing.T) {
	t.Setenv("FACE_EMBED_WS_URL", "")

	bridge := NewEmbedBridgeClient()
	defer bridge.CloseConnection()

	_, err := bridge.EmbedFace([]byte("anything"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot connect to embedding service")
}
