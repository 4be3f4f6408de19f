package observer

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"terravox/internal/protocol"
	"terravox/internal/sim/world"
)

func dialTestServer(t *testing.T, stateEvery time.Duration) (*websocket.Conn, *world.World) {
	t.Helper()
	w := world.New(world.WorldConfig{ID: "test_world", Seed: 7, ViewDistance: 2}, nil, nil)
	srv := NewServer(w, stateEvery, testLogger(t))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, w
}

func testLogger(t *testing.T) *log.Logger {
	return log.New(testWriter{t}, "[test] ", 0)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHandshake_WelcomeCarriesWorldParams(t *testing.T) {
	conn, w := dialTestServer(t, time.Minute)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "viewer",
	})

	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(readMsg(t, conn), &welcome); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("type = %q, want WELCOME", welcome.Type)
	}
	if welcome.SessionID == "" {
		t.Fatalf("missing session id")
	}
	if welcome.WorldID != w.ID() {
		t.Fatalf("world id = %q, want %q", welcome.WorldID, w.ID())
	}
	if welcome.WorldParams.Seed != w.Seed() {
		t.Fatalf("seed = %d, want %d", welcome.WorldParams.Seed, w.Seed())
	}
}

func TestHandshake_RejectsWrongVersion(t *testing.T) {
	conn, _ := dialTestServer(t, time.Minute)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: "0.0",
		ObserverName:    "viewer",
	})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close on a bad protocol version")
	}
}

func TestMoveAndSetBlock(t *testing.T) {
	conn, w := dialTestServer(t, time.Minute)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "viewer",
	})
	readMsg(t, conn) // WELCOME

	sendJSON(t, conn, protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Pos:             [3]float32{100, 64, 200},
	})

	// A SET_BLOCK at an invalid position comes back as an error; use the
	// reply to also confirm the preceding MOVE was applied in order.
	sendJSON(t, conn, protocol.SetBlockMsg{
		Type:            protocol.TypeSetBlock,
		ProtocolVersion: protocol.Version,
		X:               -5, Y: 10, Z: 10,
		Block: 1,
	})

	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(readMsg(t, conn), &errMsg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errMsg.Type != protocol.TypeError || errMsg.Code != protocol.ErrBlocked {
		t.Fatalf("got %q/%q, want ERROR/%s", errMsg.Type, errMsg.Code, protocol.ErrBlocked)
	}

	pos := w.PlayerPosition()
	if pos.X() != 100 || pos.Z() != 200 {
		t.Fatalf("player position = %v, want (100,64,200)", pos)
	}
}

// Error replies and the periodic state pump share one connection; flood the
// server with junk while the ticker runs hot and check that every frame it
// emits still decodes cleanly. Run under the race detector to catch writes
// bypassing the writer goroutine.
func TestConcurrentStateAndErrorWrites(t *testing.T) {
	conn, _ := dialTestServer(t, 2*time.Millisecond)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "viewer",
	})
	readMsg(t, conn) // WELCOME

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			b, _ := json.Marshal(map[string]string{
				"type":             "BOGUS",
				"protocol_version": protocol.Version,
			})
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}()

	var sawError, sawState bool
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && !(sawError && sawState) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("server sent a malformed frame: %v", err)
		}
		switch base.Type {
		case protocol.TypeError:
			sawError = true
		case protocol.TypeState, protocol.TypeRegen:
			sawState = sawState || base.Type == protocol.TypeState
		default:
			t.Fatalf("unexpected frame type %q", base.Type)
		}
	}
	<-done
	if !sawError || !sawState {
		t.Fatalf("sawError=%v sawState=%v, want both", sawError, sawState)
	}
}

func TestNilLoggerConnection(t *testing.T) {
	w := world.New(world.WorldConfig{ID: "test_world", Seed: 7, ViewDistance: 2}, nil, nil)
	srv := NewServer(w, time.Minute, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "viewer",
	})
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(readMsg(t, conn), &welcome); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("type = %q, want WELCOME", welcome.Type)
	}
	// Closing triggers the disconnect log path.
	_ = conn.Close()
	time.Sleep(20 * time.Millisecond)
}
