package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsession-server/internal/config"
	"github.com/vovakirdan/roomsession-server/internal/core"
	"github.com/vovakirdan/roomsession-server/internal/proto"
)

// frame is an outbound message with its data left undecoded.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func startTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	hub := core.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	disabledLogger := zerolog.Nop()
	ts := httptest.NewServer(NewRouter(hub, &cfg, &disabledLogger))
	t.Cleanup(ts.Close)

	return ts
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}

// nextFrame reads the next frame and checks its event name.
func nextFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()

	var f frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read %s: %v", event, err)
	}
	if f.Type != proto.OutboundTypeEvent || f.Event != event {
		t.Fatalf("expected event %q, got %+v (data %s)", event, f, f.Data)
	}
	return f
}

func nextError(ctx context.Context, t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()

	var f frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if f.Type != proto.OutboundTypeError || f.Error == nil || f.Error.Code != code {
		t.Fatalf("expected error %q, got %+v", code, f)
	}
}

func decode[T any](t *testing.T, f frame) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(f.Data, &v); err != nil {
		t.Fatalf("decode %s data %s: %v", f.Event, f.Data, err)
	}
	return v
}
