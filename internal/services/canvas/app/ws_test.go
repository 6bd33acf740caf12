package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

type wsTestFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsTestJoined struct {
	RoomID   string `json:"room_id"`
	SocketID string `json:"socket_id"`
	Peers    []struct {
		SocketID    string `json:"socket_id"`
		DisplayName string `json:"display_name"`
		Color       string `json:"color"`
	} `json:"peers"`
}

type wsTestPresence struct {
	Event       string `json:"event"`
	SocketID    string `json:"socket_id"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
}

type wsTestRelayed struct {
	SocketID    string          `json:"socket_id"`
	DisplayName string          `json:"display_name"`
	Color       string          `json:"color"`
	Body        json.RawMessage `json:"body"`
}

type wsTestError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func dialWS(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	conn, err := dialWSErr(srv, mintToken(t, testAuthSecret, userID))
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func dialWSErr(srv *httptest.Server, token string) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	cfg, err := websocket.NewConfig(wsURL, srv.URL)
	if err != nil {
		return nil, err
	}
	if token != "" {
		cfg.Header = make(http.Header)
		cfg.Header.Set("Authorization", "Bearer "+token)
	}
	return websocket.DialConfig(cfg)
}

func writeTestFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := json.NewEncoder(conn).Encode(frame); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func readTestFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	if err := json.NewDecoder(conn).Decode(&got); err != nil {
		t.Fatalf("decode server frame: %v", err)
	}
	return got
}

func decodePayload(t *testing.T, payload json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(payload, v); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
}

// startRoom provisions a room over the HTTP API and returns its id.
func startRoom(t *testing.T, srv *httptest.Server, sceneID string) string {
	t.Helper()
	creds := decodeCollaborate(t, apiRequest(t, srv, http.MethodPost, "/api/scenes/"+sceneID+"/collaborate", "bob"))
	return creds.RoomID
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID, displayName, color string) wsTestJoined {
	t.Helper()
	writeTestFrame(t, conn, map[string]any{
		"type":       "room.join",
		"request_id": "join-1",
		"payload":    map[string]any{"room_id": roomID, "display_name": displayName, "color": color},
	})
	frame := readTestFrame(t, conn)
	if frame.Type != "room.joined" {
		t.Fatalf("frame type = %q, want room.joined (payload %s)", frame.Type, frame.Payload)
	}
	var joined wsTestJoined
	decodePayload(t, frame.Payload, &joined)
	return joined
}

func TestWSRequiresAuth(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))

	if _, err := dialWSErr(srv, ""); err == nil {
		t.Fatal("expected dial without token to fail")
	}
	if _, err := dialWSErr(srv, mintToken(t, "wrong-secret", "bob")); err == nil {
		t.Fatal("expected dial with forged token to fail")
	}
}

// Browser websocket clients cannot set headers, so the token is also
// accepted as a query parameter.
func TestWSTokenQueryParam(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + mintToken(t, testAuthSecret, "bob")
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
}

func TestWSJoinAndPresence(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	bob := dialWS(t, srv, "bob")
	bobJoined := joinRoom(t, bob, roomID, "Bob", "#ff0000")
	if bobJoined.RoomID != roomID || bobJoined.SocketID == "" {
		t.Fatalf("joined = %+v, want room and socket id", bobJoined)
	}
	if len(bobJoined.Peers) != 0 {
		t.Fatalf("peers = %+v, want empty roster for first joiner", bobJoined.Peers)
	}

	alice := dialWS(t, srv, "alice")
	aliceJoined := joinRoom(t, alice, roomID, "Alice", "#00ff00")
	if len(aliceJoined.Peers) != 1 || aliceJoined.Peers[0].SocketID != bobJoined.SocketID {
		t.Fatalf("peers = %+v, want bob's socket", aliceJoined.Peers)
	}

	frame := readTestFrame(t, bob)
	if frame.Type != "room.presence" {
		t.Fatalf("frame type = %q, want room.presence", frame.Type)
	}
	var presence wsTestPresence
	decodePayload(t, frame.Payload, &presence)
	if presence.Event != "join" || presence.SocketID != aliceJoined.SocketID || presence.DisplayName != "Alice" {
		t.Fatalf("presence = %+v, want alice join", presence)
	}
}

func TestWSJoinDenied(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	tests := []struct {
		name     string
		userID   string
		roomID   string
		wantCode string
	}{
		{name: "viewer role", userID: "dave", roomID: roomID, wantCode: "FORBIDDEN"},
		{name: "member without grant", userID: "carol", roomID: roomID, wantCode: "FORBIDDEN"},
		{name: "non-member", userID: "stranger", roomID: roomID, wantCode: "NOT_FOUND"},
		{name: "unknown room", userID: "bob", roomID: "ghost-room", wantCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialWS(t, srv, tt.userID)
			writeTestFrame(t, conn, map[string]any{
				"type":    "room.join",
				"payload": map[string]any{"room_id": tt.roomID},
			})
			frame := readTestFrame(t, conn)
			if frame.Type != "room.error" {
				t.Fatalf("frame type = %q, want room.error", frame.Type)
			}
			var wsErr wsTestError
			decodePayload(t, frame.Payload, &wsErr)
			if wsErr.Error.Code != tt.wantCode {
				t.Fatalf("error code = %q, want %q", wsErr.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestWSRelayForwardsVerbatim(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	bob := dialWS(t, srv, "bob")
	bobJoined := joinRoom(t, bob, roomID, "Bob", "")
	alice := dialWS(t, srv, "alice")
	joinRoom(t, alice, roomID, "Alice", "")
	readTestFrame(t, bob) // alice's join presence

	// The body is opaque ciphertext to the relay.
	opaque := `{"ciphertext":"YWJjZGVm","nonce":"MTIzNDU2"}`
	writeTestFrame(t, bob, map[string]any{
		"type":    "room.update",
		"payload": json.RawMessage(opaque),
	})

	frame := readTestFrame(t, alice)
	if frame.Type != "room.update" {
		t.Fatalf("frame type = %q, want room.update", frame.Type)
	}
	var relayed wsTestRelayed
	decodePayload(t, frame.Payload, &relayed)
	if relayed.SocketID != bobJoined.SocketID {
		t.Fatalf("socket id = %q, want %q", relayed.SocketID, bobJoined.SocketID)
	}
	var want, got any
	if err := json.Unmarshal([]byte(opaque), &want); err != nil {
		t.Fatalf("unmarshal sent body: %v", err)
	}
	if err := json.Unmarshal(relayed.Body, &got); err != nil {
		t.Fatalf("unmarshal relayed body: %v", err)
	}
	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if string(wantJSON) != string(gotJSON) {
		t.Fatalf("relayed body = %s, want %s", gotJSON, wantJSON)
	}
}

func TestWSPointerCarriesPresenceMetadata(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	bob := dialWS(t, srv, "bob")
	joinRoom(t, bob, roomID, "Bob", "#ff0000")
	alice := dialWS(t, srv, "alice")
	joinRoom(t, alice, roomID, "Alice", "")
	readTestFrame(t, bob)

	writeTestFrame(t, bob, map[string]any{
		"type":    "room.pointer",
		"payload": json.RawMessage(`{"x":10,"y":20}`),
	})

	frame := readTestFrame(t, alice)
	if frame.Type != "room.pointer" {
		t.Fatalf("frame type = %q, want room.pointer", frame.Type)
	}
	var relayed wsTestRelayed
	decodePayload(t, frame.Payload, &relayed)
	if relayed.DisplayName != "Bob" || relayed.Color != "#ff0000" {
		t.Fatalf("relayed metadata = %+v, want bob's display name and color", relayed)
	}
}

func TestWSUpdateRequiresJoin(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))

	conn := dialWS(t, srv, "bob")
	writeTestFrame(t, conn, map[string]any{
		"type":    "room.update",
		"payload": json.RawMessage(`{}`),
	})
	frame := readTestFrame(t, conn)
	if frame.Type != "room.error" {
		t.Fatalf("frame type = %q, want room.error", frame.Type)
	}
	var wsErr wsTestError
	decodePayload(t, frame.Payload, &wsErr)
	if wsErr.Error.Code != "FAILED_PRECONDITION" {
		t.Fatalf("error code = %q, want FAILED_PRECONDITION", wsErr.Error.Code)
	}
}

func TestWSLeaveNotifiesPeers(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	bob := dialWS(t, srv, "bob")
	joinRoom(t, bob, roomID, "Bob", "")
	alice := dialWS(t, srv, "alice")
	aliceJoined := joinRoom(t, alice, roomID, "Alice", "")
	readTestFrame(t, bob)

	writeTestFrame(t, alice, map[string]any{
		"type":       "room.leave",
		"request_id": "leave-1",
		"payload":    json.RawMessage(`{}`),
	})
	left := readTestFrame(t, alice)
	if left.Type != "room.left" {
		t.Fatalf("frame type = %q, want room.left", left.Type)
	}

	frame := readTestFrame(t, bob)
	if frame.Type != "room.presence" {
		t.Fatalf("frame type = %q, want room.presence", frame.Type)
	}
	var presence wsTestPresence
	decodePayload(t, frame.Payload, &presence)
	if presence.Event != "leave" || presence.SocketID != aliceJoined.SocketID {
		t.Fatalf("presence = %+v, want alice leave", presence)
	}
}

func TestWSDisconnectNotifiesPeers(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))
	roomID := startRoom(t, srv, "scene1")

	bob := dialWS(t, srv, "bob")
	joinRoom(t, bob, roomID, "Bob", "")
	alice := dialWS(t, srv, "alice")
	aliceJoined := joinRoom(t, alice, roomID, "Alice", "")
	readTestFrame(t, bob)

	_ = alice.Close()

	frame := readTestFrame(t, bob)
	if frame.Type != "room.presence" {
		t.Fatalf("frame type = %q, want room.presence", frame.Type)
	}
	var presence wsTestPresence
	decodePayload(t, frame.Payload, &presence)
	if presence.Event != "leave" || presence.SocketID != aliceJoined.SocketID {
		t.Fatalf("presence = %+v, want alice leave", presence)
	}
}

func TestWSUnsupportedFrame(t *testing.T) {
	srv := newTestServer(t, seedTestStore(t))

	conn := dialWS(t, srv, "bob")
	writeTestFrame(t, conn, map[string]any{
		"type":    "room.unknown",
		"payload": json.RawMessage(`{}`),
	})
	frame := readTestFrame(t, conn)
	if frame.Type != "room.error" {
		t.Fatalf("frame type = %q, want room.error", frame.Type)
	}
}
