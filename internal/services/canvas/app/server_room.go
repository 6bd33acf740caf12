package server

import (
	"encoding/json"
	"sync"
)

// wsPeer serializes frame writes to one websocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// wsSession tracks one connection's identity and current room.
type wsSession struct {
	mu       sync.Mutex
	userID   string
	socketID string
	room     *relayRoom
	peer     *wsPeer
}

func newWSSession(userID, socketID string, peer *wsPeer) *wsSession {
	return &wsSession{
		userID:   userID,
		socketID: socketID,
		peer:     peer,
	}
}

func (s *wsSession) setRoom(next *relayRoom) *relayRoom {
	s.mu.Lock()
	previous := s.room
	s.room = next
	s.mu.Unlock()
	return previous
}

func (s *wsSession) currentRoom() *relayRoom {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	return room
}

// roomHub indexes live relay rooms by room id. Rooms are ephemeral: a
// process restart drops all memberships and clients rejoin.
//
// Membership changes and room lifecycle share the hub lock. Resolving a
// room and adding the peer must be one step: a lookup returned to the
// caller could otherwise be emptied and dropped before the caller joins,
// splitting the room id across two instances that never see each other.
type roomHub struct {
	mu    sync.Mutex
	rooms map[string]*relayRoom
}

func newRoomHub() *roomHub {
	return &roomHub{rooms: make(map[string]*relayRoom)}
}

// join adds the peer to the room, creating the room if needed, and
// returns it with the roster of peers already present.
func (h *roomHub) join(roomID string, peer *wsPeer, info presencePeer) (*relayRoom, []presencePeer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = newRelayRoom(roomID)
		h.rooms[roomID] = room
	}
	return room, room.join(peer, info)
}

// leave removes the peer and unregisters the room once empty. The map
// entry is re-checked against this instance so a stale pointer can never
// unregister a room that was recreated under the same id.
func (h *roomHub) leave(room *relayRoom, peer *wsPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room.leave(peer) && h.rooms[room.roomID] == room {
		delete(h.rooms, room.roomID)
	}
}

// relayRoom is the membership roster for one room. The room holds no
// message state: payloads pass through without being inspected or stored.
type relayRoom struct {
	mu     sync.Mutex
	roomID string
	peers  map[*wsPeer]presencePeer
}

func newRelayRoom(roomID string) *relayRoom {
	return &relayRoom{
		roomID: roomID,
		peers:  make(map[*wsPeer]presencePeer),
	}
}

// join adds a peer and returns the roster of peers already present.
func (r *relayRoom) join(peer *wsPeer, info presencePeer) []presencePeer {
	r.mu.Lock()
	defer r.mu.Unlock()

	others := make([]presencePeer, 0, len(r.peers))
	for present, presentInfo := range r.peers {
		if present == peer {
			continue
		}
		others = append(others, presentInfo)
	}
	r.peers[peer] = info
	return others
}

// leave removes a peer and reports whether the room is now empty.
func (r *relayRoom) leave(peer *wsPeer) bool {
	r.mu.Lock()
	delete(r.peers, peer)
	empty := len(r.peers) == 0
	r.mu.Unlock()
	return empty
}

// others snapshots every peer except the sender.
func (r *relayRoom) others(sender *wsPeer) []*wsPeer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]*wsPeer, 0, len(r.peers))
	for peer := range r.peers {
		if peer == sender {
			continue
		}
		peers = append(peers, peer)
	}
	return peers
}

// info returns the presence metadata recorded for a joined peer.
func (r *relayRoom) info(peer *wsPeer) (presencePeer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.peers[peer]
	return info, ok
}

// broadcast forwards a frame to every peer except the sender.
func (r *relayRoom) broadcast(sender *wsPeer, frame wsFrame) {
	for _, peer := range r.others(sender) {
		_ = peer.writeFrame(frame)
	}
}
