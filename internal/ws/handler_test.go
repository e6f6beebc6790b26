package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/shared/types"
)

func newTestStream(t *testing.T) (*store.Store, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(store.Options{})
	h := NewHandler(st, nil, nil)

	r := gin.New()
	r.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return st, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandleConnection(t *testing.T) {
	t.Run("welcome frame carries state", func(t *testing.T) {
		st, conn := newTestStream(t)
		_, err := st.Add("button", types.CanvasDesktop, nil)
		require.NoError(t, err)

		frame := readFrame(t, conn)
		assert.Equal(t, "system", frame["type"])
		assert.NotNil(t, frame["state"])
	})

	t.Run("ping pong", func(t *testing.T) {
		_, conn := newTestStream(t)
		readFrame(t, conn)

		require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
		frame := readFrame(t, conn)
		assert.Equal(t, "pong", frame["type"])
	})

	t.Run("state request", func(t *testing.T) {
		st, conn := newTestStream(t)
		readFrame(t, conn)

		_, err := st.Add("hero", types.CanvasMobile, nil)
		require.NoError(t, err)

		require.NoError(t, conn.WriteJSON(map[string]string{"type": "state"}))
		for {
			frame := readFrame(t, conn)
			if frame["type"] == "state" {
				assert.NotNil(t, frame["state"])
				break
			}
		}
	})

	t.Run("unknown type reports error", func(t *testing.T) {
		_, conn := newTestStream(t)
		readFrame(t, conn)

		require.NoError(t, conn.WriteJSON(map[string]string{"type": "resize"}))
		for {
			frame := readFrame(t, conn)
			if frame["type"] == "error" {
				break
			}
		}
	})

	t.Run("mutation events forwarded", func(t *testing.T) {
		st, conn := newTestStream(t)
		readFrame(t, conn)

		inst, err := st.Add("button", types.CanvasDesktop, nil)
		require.NoError(t, err)

		frame := readFrame(t, conn)
		assert.Equal(t, string(types.EventComponentAdded), frame["type"])
		assert.Equal(t, inst.ID, frame["component_id"])
	})

	// Control replies and forwarded events write to the same socket from
	// different goroutines; every frame must still arrive intact.
	t.Run("concurrent pings and mutations", func(t *testing.T) {
		st, conn := newTestStream(t)
		readFrame(t, conn)

		pingsDone := make(chan struct{})
		go func() {
			defer close(pingsDone)
			for i := 0; i < 50; i++ {
				if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
					return
				}
			}
		}()

		for i := 0; i < 50; i++ {
			_, err := st.Add("button", types.CanvasDesktop, nil)
			require.NoError(t, err)
		}

		pongs := 0
		for pongs < 50 {
			frame := readFrame(t, conn)
			require.NotEmpty(t, frame["type"])
			if frame["type"] == "pong" {
				pongs++
			}
		}
		<-pingsDone
	})
}
