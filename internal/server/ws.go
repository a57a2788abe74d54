package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type liveConn struct {
	conn     *websocket.Conn
	sendTick *time.Ticker
}

func serveWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = "default"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	lc := &liveConn{
		conn:     conn,
		sendTick: time.NewTicker(hzInterval(PushHz)),
	}

	v := &viewer{id: randID("v")}
	var sess *Session
	attachErr := errSessionClosed
	// A session retired by the cleanup sweep can linger in a local pointer;
	// fetching again returns a fresh one.
	for attempt := 0; attempt < 2 && attachErr == errSessionClosed; attempt++ {
		sess = h.GetSession(sessionID)
		attachErr = sess.attach(v)
	}
	if attachErr != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "full", Payload: errorDTO{Message: attachErr.Error()}})
		lc.sendTick.Stop()
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				log.Printf("invalid JSON message: %v", err)
				continue
			}
			switch inbound.Type {
			case "params":
				var patch paramsPatchDTO
				if err := json.Unmarshal(inbound.Payload, &patch); err != nil {
					log.Printf("invalid params payload: %v", err)
					continue
				}
				handleParams(sess, v, patch)
			case "course":
				var dtos []obstacleDTO
				if err := json.Unmarshal(inbound.Payload, &dtos); err != nil {
					log.Printf("invalid course payload: %v", err)
					continue
				}
				handleCourse(sess, v, dtos)
			case "launch":
				handleLaunch(sess, v)
			case "pause":
				sess.pause()
			case "resume":
				sess.resume(time.Now())
			case "reset":
				sess.reset()
			case "time_factor":
				var tf timeFactorDTO
				if err := json.Unmarshal(inbound.Payload, &tf); err != nil {
					log.Printf("invalid time_factor payload: %v", err)
					continue
				}
				sess.setTimeFactor(tf.Factor)
			case "clear_runs":
				sess.clearRuns()
			default:
				log.Printf("unknown message type: %s", inbound.Type)
			}
		}
	}()

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-lc.sendTick.C:
				sess.Mu.Lock()
				state := sess.stateLocked()
				outbound := v.consume()
				sess.Mu.Unlock()

				if err := conn.WriteJSON(state); err != nil {
					log.Printf("send state error: %v", err)
					return
				}
				for _, event := range outbound {
					if err := conn.WriteJSON(event); err != nil {
						log.Printf("send event error: %v", err)
						return
					}
				}
			}
		}
	}()

	<-ctx.Done()
	lc.sendTick.Stop()
	conn.Close()
	sess.detach(v.id)
}

/* --------------------------- Message handlers ------------------------ */

func handleParams(s *Session, v *viewer, patch paramsPatchDTO) {
	if err := s.applyParams(patch); err != nil {
		s.sendErrorTo(v, err.Error())
	}
}

func handleCourse(s *Session, v *viewer, dtos []obstacleDTO) {
	if err := s.setCourse(dtos); err != nil {
		s.sendErrorTo(v, err.Error())
	}
}

func handleLaunch(s *Session, v *viewer) {
	if err := s.launch(time.Now()); err != nil {
		s.sendErrorTo(v, err.Error())
	}
}

func (s *Session) sendErrorTo(v *viewer, msg string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	v.send("error", errorDTO{Message: msg})
}
