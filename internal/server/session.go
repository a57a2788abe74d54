package server

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	. "DrivingRange/internal/sim"
)

const (
	FrameHz     = 60.0 // playback tick rate
	PushHz      = 30.0 // per-client WS state pushes
	MaxViewers  = 8
	RunLogDepth = 50
)

var (
	errSessionFull   = errors.New("session full")
	errSessionClosed = errors.New("session closed")
	errShotActive    = errors.New("a shot is already in the air")
)

// outboundMessage packages a queued websocket event.
type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// viewer is one connected client of a session. Its outbox is written under the
// session lock and drained by the connection's send loop.
type viewer struct {
	id     string
	outbox []outboundMessage
}

func (v *viewer) send(typ string, payload interface{}) {
	v.outbox = append(v.outbox, outboundMessage{Type: typ, Payload: payload})
}

func (v *viewer) consume() []outboundMessage {
	msgs := v.outbox
	v.outbox = nil
	return msgs
}

// hzInterval converts a tick rate in Hz into a ticker period. Going through
// the float64 parameter keeps the conversion out of constant arithmetic, which
// cannot round a fractional period.
func hzInterval(hz float64) time.Duration {
	return time.Duration(float64(time.Second) / hz)
}

// Session is one shared driving range: launch parameters, the course, the
// playback of the current shot, and the table of finished runs. Everyone
// connected to the same session sees the same tee.
type Session struct {
	ID   string
	Runs *RunLog
	Mu   sync.Mutex

	params ShotParams
	course []Obstacle
	play   *Playback

	viewers map[string]*viewer
	stop    chan struct{}
	closed  bool

	// metadata of the shot currently on screen
	runID    string
	launched time.Time
	runShot  ShotParams
}

func newSession(id string, params ShotParams, course []Obstacle) *Session {
	s := &Session{
		ID:      id,
		Runs:    NewRunLog(RunLogDepth),
		params:  params,
		course:  course,
		play:    NewPlayback(),
		viewers: map[string]*viewer{},
		stop:    make(chan struct{}),
	}
	s.play.SetRest(Vec2{X: 0, Y: params.StartHeight})
	return s
}

// run drives the playback until the hub retires the session.
func (s *Session) run() {
	ticker := time.NewTicker(hzInterval(FrameHz))
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.step(now)
		}
	}
}

// step advances the playback one frame and records the run when it lands.
func (s *Session) step(now time.Time) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	was := s.play.Status()
	s.play.Tick(now)
	if was == StatusFlying && s.play.Status() == StatusFinished {
		rec := RunRecord{
			ID:       s.runID,
			PlayedAt: s.launched,
			Params:   toParamsDTO(s.runShot),
			Stats:    toStatsDTO(s.play.Flight().Stats),
		}
		s.Runs.Append(rec)
		s.broadcastLocked("stats", rec)
	}
}

func (s *Session) broadcastLocked(typ string, payload interface{}) {
	for _, v := range s.viewers {
		v.send(typ, payload)
	}
}

// attach registers a connection and seeds its outbox with the session state.
func (s *Session) attach(v *viewer) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	if len(s.viewers) >= MaxViewers {
		return errSessionFull
	}
	s.viewers[v.id] = v
	v.send("hello", helloMsg{
		SessionID: s.ID,
		Params:    toParamsDTO(s.params),
		Course:    fromCourse(s.course),
		Runs:      s.Runs.List(),
		Limits:    limits(),
	})
	// A late joiner needs the trajectory already on screen.
	if s.play.Status() != StatusIdle {
		v.send("flight", s.flightMsgLocked())
	}
	return nil
}

func (s *Session) detach(id string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	delete(s.viewers, id)
}

func (s *Session) flightMsgLocked() flightMsg {
	f := s.play.Flight()
	return flightMsg{
		RunID:   s.runID,
		Params:  toParamsDTO(s.runShot),
		Samples: toSampleDTOs(f.Samples),
		Stats:   toStatsDTO(f.Stats),
	}
}

// applyParams merges a parameter patch. Edits are only allowed between shots;
// mid-flight the sliders are locked.
func (s *Session) applyParams(patch paramsPatchDTO) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if st := s.play.Status(); st == StatusFlying || st == StatusPaused {
		return errShotActive
	}
	s.params = patch.apply(s.params)
	s.play.SetRest(Vec2{X: 0, Y: s.params.StartHeight})
	s.broadcastLocked("params", toParamsDTO(s.params))
	return nil
}

// setCourse replaces the obstacle layout, with the same gating as parameter
// edits.
func (s *Session) setCourse(dtos []obstacleDTO) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if st := s.play.Status(); st == StatusFlying || st == StatusPaused {
		return errShotActive
	}
	s.course = toCourse(dtos)
	s.broadcastLocked("course", fromCourse(s.course))
	return nil
}

// launch solves the shot with the session's current parameters and starts the
// replay. The solve runs to completion before the first frame is shown.
func (s *Session) launch(now time.Time) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if st := s.play.Status(); st == StatusFlying || st == StatusPaused {
		return errShotActive
	}

	flight, err := Solve(s.params, s.course, DefaultSampleStep)
	if err != nil {
		return err
	}
	if err := s.play.Launch(flight, now); err != nil {
		return err
	}
	s.runID = randID("run")
	s.launched = now
	s.runShot = s.params
	s.broadcastLocked("flight", s.flightMsgLocked())
	return nil
}

func (s *Session) pause() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.play.Pause()
}

func (s *Session) resume(now time.Time) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.play.Resume(now)
}

func (s *Session) reset() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.play.Reset()
}

func (s *Session) setTimeFactor(f float64) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.play.SetTimeFactor(f)
}

func (s *Session) clearRuns() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Runs.Clear()
	s.broadcastLocked("runs", s.Runs.Archive())
}

// stateLocked snapshots the periodic push for one client.
func (s *Session) stateLocked() stateMsg {
	fr := s.play.Frame()
	return stateMsg{
		Type:       "state",
		Status:     string(fr.Status),
		Elapsed:    fr.Elapsed,
		TimeFactor: fr.TimeFactor,
		Ball:       toSampleDTO(fr.Ball),
		PathLen:    len(fr.Visible),
		Viewers:    len(s.viewers),
	}
}

/* ------------------------------- Hub --------------------------------- */

// Hub hands out sessions by id, creating them on first use with the
// server-wide default parameters and course.
type Hub struct {
	Sessions map[string]*Session
	Mu       sync.Mutex

	defaults ShotParams
	course   []Obstacle
}

func NewHub(defaults ShotParams, course []Obstacle) *Hub {
	return &Hub{
		Sessions: map[string]*Session{},
		defaults: defaults,
		course:   course,
	}
}

func (h *Hub) GetSession(id string) *Session {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	s, ok := h.Sessions[id]
	if !ok {
		s = newSession(id, h.defaults, h.course)
		h.Sessions[id] = s
		go s.run()
	}
	return s
}

// lookup returns an existing session without creating one.
func (h *Hub) lookup(id string) *Session {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return h.Sessions[id]
}

// CleanupIdleSessions retires sessions nobody is watching and nothing is
// flying in. A retired session's tick loop stops; the next visitor with the
// same id gets a fresh one.
func (h *Hub) CleanupIdleSessions() {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	for id, s := range h.Sessions {
		s.Mu.Lock()
		idle := len(s.viewers) == 0 &&
			s.play.Status() != StatusFlying && s.play.Status() != StatusPaused
		if idle {
			s.closed = true
			close(s.stop)
		}
		s.Mu.Unlock()
		if idle {
			delete(h.Sessions, id)
		}
	}
}

func randID(prefix string) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return prefix + "-" + string(b)
}
