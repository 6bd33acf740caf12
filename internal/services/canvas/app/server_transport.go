package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/websocket"

	"github.com/driftboard/driftboard/internal/canvas/domain"
	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

type wsUserIDContextKey struct{}

// wsEndpoint authenticates the upgrade request and hands the connection to
// the relay loop.
func wsEndpoint(hub *roomHub, authenticator *jwtAuthenticator, authorizer roomJoinAuthorizer) http.HandlerFunc {
	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, authorizer)
	})

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := accessTokenFromRequest(r)
		if token == "" {
			log.Printf("canvas: websocket unauthorized: missing token for remote=%s", r.RemoteAddr)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		userID, err := authenticator.Authenticate(token)
		if err != nil {
			log.Printf("canvas: websocket unauthorized: token rejected for remote=%s err=%v", r.RemoteAddr, err)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), wsUserIDContextKey{}, userID)
		wsHandler.ServeHTTP(w, r.WithContext(ctx))
	}
}

// accessTokenFromRequest reads the bearer token from the Authorization
// header or, for browser websocket clients that cannot set headers, the
// token query parameter.
func accessTokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func handleWSConn(conn *websocket.Conn, hub *roomHub, authorizer roomJoinAuthorizer) {
	defer func() {
		_ = conn.Close()
	}()

	userID := ""
	if request := conn.Request(); request != nil {
		if resolved, ok := request.Context().Value(wsUserIDContextKey{}).(string); ok {
			userID = strings.TrimSpace(resolved)
		}
	}
	if userID == "" {
		return
	}

	socketID, err := domain.NewID()
	if err != nil {
		log.Printf("canvas: generate socket id: %v", err)
		return
	}

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))
	session := newWSSession(userID, socketID, peer)
	defer func() {
		if room := session.currentRoom(); room != nil {
			leaveRelayRoom(hub, room, session, true)
		}
	}()

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(session.peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(session.peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "room.join":
			handleJoinFrame(conn.Request().Context(), session, hub, authorizer, frame)
		case "room.leave":
			handleLeaveFrame(session, hub, frame)
		case "room.update":
			handleRelayFrame(session, frame, false)
		case "room.pointer":
			handleRelayFrame(session, frame, true)
		default:
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

// leaveRelayRoom removes the session's peer from a room and notifies the
// remaining peers. The hub unregisters the room once it is empty.
func leaveRelayRoom(hub *roomHub, room *relayRoom, session *wsSession, notify bool) {
	if room == nil || session == nil {
		return
	}
	info, joined := room.info(session.peer)
	hub.leave(room, session.peer)
	if notify && joined {
		room.broadcast(session.peer, wsFrame{
			Type: "room.presence",
			Payload: mustJSON(presencePayload{
				Event:       "leave",
				SocketID:    info.SocketID,
				DisplayName: info.DisplayName,
				Color:       info.Color,
			}),
		})
	}
}

func handleJoinFrame(ctx context.Context, session *wsSession, hub *roomHub, authorizer roomJoinAuthorizer, frame wsFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid join payload")
		return
	}

	roomID := strings.TrimSpace(payload.RoomID)
	if roomID == "" {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "room_id is required")
		return
	}
	if utf8.RuneCountInString(payload.DisplayName) > maxDisplayNameRunes {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "display_name is too long")
		return
	}
	if utf8.RuneCountInString(payload.Color) > maxColorRunes {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "color is too long")
		return
	}

	if err := authorizer.CanJoinRoom(ctx, session.userID, roomID); err != nil {
		switch apperrors.GetCode(err) {
		case apperrors.CodeNotFound:
			_ = writeWSError(session.peer, frame.RequestID, "NOT_FOUND", "room not found")
		case apperrors.CodeAccessDenied, apperrors.CodeRoomCollaborationDisabled:
			_ = writeWSError(session.peer, frame.RequestID, "FORBIDDEN", "collaborate access required for room")
		default:
			log.Printf("canvas: room join authorization failed user=%q room=%q err=%v", session.userID, roomID, err)
			_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "room authorization unavailable")
		}
		return
	}

	info := presencePeer{
		SocketID:    session.socketID,
		DisplayName: strings.TrimSpace(payload.DisplayName),
		Color:       strings.TrimSpace(payload.Color),
	}

	room, others := hub.join(roomID, session.peer, info)
	previous := session.setRoom(room)
	if previous != nil && previous != room {
		leaveRelayRoom(hub, previous, session, true)
	}

	_ = session.peer.writeFrame(wsFrame{
		Type:      "room.joined",
		RequestID: frame.RequestID,
		Payload: mustJSON(joinedPayload{
			RoomID:     roomID,
			SocketID:   session.socketID,
			Peers:      others,
			ServerTime: time.Now().UTC().Format(time.RFC3339),
		}),
	})
	room.broadcast(session.peer, wsFrame{
		Type: "room.presence",
		Payload: mustJSON(presencePayload{
			Event:       "join",
			SocketID:    info.SocketID,
			DisplayName: info.DisplayName,
			Color:       info.Color,
		}),
	})
}

func handleLeaveFrame(session *wsSession, hub *roomHub, frame wsFrame) {
	room := session.setRoom(nil)
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FAILED_PRECONDITION", "not joined to a room")
		return
	}
	leaveRelayRoom(hub, room, session, true)
	_ = session.peer.writeFrame(wsFrame{
		Type:      "room.left",
		RequestID: frame.RequestID,
		Payload:   mustJSON(leftPayload{RoomID: room.roomID}),
	})
}

// handleRelayFrame rebroadcasts an opaque payload to the rest of the room.
// The body is forwarded verbatim; only routing metadata wraps it.
func handleRelayFrame(session *wsSession, frame wsFrame, withPresenceMeta bool) {
	room := session.currentRoom()
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FAILED_PRECONDITION", "must join a room before sending")
		return
	}

	relayed := relayedPayload{
		SocketID: session.socketID,
		Body:     frame.Payload,
	}
	if withPresenceMeta {
		if info, ok := room.info(session.peer); ok {
			relayed.DisplayName = info.DisplayName
			relayed.Color = info.Color
		}
	}

	room.broadcast(session.peer, wsFrame{
		Type:    frame.Type,
		Payload: mustJSON(relayed),
	})
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "room.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
