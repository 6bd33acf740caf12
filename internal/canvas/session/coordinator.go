// Package session coordinates loading scene state on the client. A
// navigation mints a request id, fetches access, credentials, and content,
// and applies the result to the long-lived canvas instance only while the
// request is still the most recent one issued. Superseded requests are
// discarded without surfacing errors.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/driftboard/driftboard/internal/canvas/room"
	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
	"github.com/driftboard/driftboard/internal/platform/timeouts"
)

// State is the coordinator's user-visible lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateApplying
	StateReady
	StateError
)

// StateLabel returns the lowercase string form of a state.
func StateLabel(s State) string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateApplying:
		return "applying"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Access is the capability descriptor returned by the scene access
// endpoint.
type Access struct {
	CanView        bool `json:"can_view"`
	CanEdit        bool `json:"can_edit"`
	CanCollaborate bool `json:"can_collaborate"`
}

// Load is everything the canvas needs to display a scene. Credentials is
// nil when the session is solo; SoloFallback marks a collaborative scene
// degraded to solo because its room credential could not be served.
type Load struct {
	SceneID      string
	Access       Access
	Content      []byte
	Credentials  *room.Credentials
	SoloFallback bool
}

// Applier is the persistent canvas instance. The coordinator is its only
// writer; Apply is never invoked for a superseded request.
type Applier interface {
	Apply(load Load)
}

// Fetcher is the network surface the coordinator drives.
type Fetcher interface {
	SceneAccess(ctx context.Context, sceneID string) (Access, error)
	RoomCredentials(ctx context.Context, sceneID string) (room.Credentials, error)
	SceneContent(ctx context.Context, sceneID string) ([]byte, error)
}

// DenialHandler runs the caller's policy for a denied navigation, such as
// redirecting to a safe default view. It is invoked outside the
// coordinator's lock.
type DenialHandler func(sceneID string, access Access)

// Snapshot is a point-in-time view of the coordinator.
type Snapshot struct {
	State        State
	SceneID      string
	SoloFallback bool
	Err          error
}

// Coordinator serializes scene loads for one client. There is no
// cancellation across fetch boundaries; every arrival is gated on the
// request id still being current, and stale results are dropped.
type Coordinator struct {
	fetcher  Fetcher
	applier  Applier
	onDenied DenialHandler
	timeout  time.Duration

	mu           sync.Mutex
	requestID    uint64
	state        State
	sceneID      string
	soloFallback bool
	err          error

	inflight sync.WaitGroup
}

func NewCoordinator(fetcher Fetcher, applier Applier, onDenied DenialHandler) *Coordinator {
	return &Coordinator{
		fetcher:  fetcher,
		applier:  applier,
		onDenied: onDenied,
		timeout:  timeouts.SceneFetch,
		state:    StateIdle,
	}
}

// Navigate supersedes any in-flight load and starts loading the scene.
// It returns the request id assigned to this navigation.
func (c *Coordinator) Navigate(sceneID string) uint64 {
	c.mu.Lock()
	c.requestID++
	id := c.requestID
	c.state = StateLoading
	c.sceneID = sceneID
	c.soloFallback = false
	c.err = nil
	c.mu.Unlock()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.load(id, sceneID)
	}()
	return id
}

// Snapshot reads the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		SceneID:      c.sceneID,
		SoloFallback: c.soloFallback,
		Err:          c.err,
	}
}

// Wait blocks until every issued load has finished or been discarded.
// Intended for shutdown and tests.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func (c *Coordinator) load(id uint64, sceneID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	acc, err := c.fetcher.SceneAccess(ctx, sceneID)
	if !c.isCurrent(id) {
		return
	}
	if err != nil {
		c.fail(id, err)
		return
	}
	if !acc.CanView {
		c.deny(id, sceneID, acc)
		return
	}

	var credentials *room.Credentials
	solo := false
	if acc.CanCollaborate {
		got, err := c.fetcher.RoomCredentials(ctx, sceneID)
		if !c.isCurrent(id) {
			return
		}
		switch {
		case err == nil:
			credentials = &got
		case apperrors.IsCode(err, apperrors.CodeRoomCredentialUnavailable):
			// Degrade to solo editing rather than blocking the scene.
			solo = true
		default:
			c.fail(id, err)
			return
		}
	}

	content, err := c.fetcher.SceneContent(ctx, sceneID)
	if !c.isCurrent(id) {
		return
	}
	if err != nil {
		c.fail(id, err)
		return
	}

	c.apply(id, Load{
		SceneID:      sceneID,
		Access:       acc,
		Content:      content,
		Credentials:  credentials,
		SoloFallback: solo,
	})
}

func (c *Coordinator) isCurrent(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return id == c.requestID
}

// apply hands the load to the canvas while holding the lock, so a stale
// pipeline can never write after a newer one.
func (c *Coordinator) apply(id uint64, load Load) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.requestID {
		return
	}
	c.state = StateApplying
	c.applier.Apply(load)
	c.state = StateReady
	c.soloFallback = load.SoloFallback
}

func (c *Coordinator) fail(id uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.requestID {
		return
	}
	c.state = StateError
	c.err = err
}

func (c *Coordinator) deny(id uint64, sceneID string, acc Access) {
	c.mu.Lock()
	if id != c.requestID {
		c.mu.Unlock()
		return
	}
	c.state = StateError
	c.err = apperrors.New(apperrors.CodeAccessDenied, "scene access denied")
	handler := c.onDenied
	c.mu.Unlock()

	if handler != nil {
		handler(sceneID, acc)
	}
}
