// Package observer serves the websocket feed for world viewers: a
// HELLO/WELCOME handshake, periodic STATE snapshots, and REGEN notices
// for chunks whose display mesh must be rebuilt.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"terravox/internal/protocol"
	"terravox/internal/sim/world"
	"terravox/internal/sim/world/terrain/store"
)

type Server struct {
	world *world.World
	log   *log.Logger

	stateEvery time.Duration
	upgrader   websocket.Upgrader
}

func NewServer(w *world.World, stateEvery time.Duration, logger *log.Logger) *Server {
	if stateEvery <= 0 {
		stateEvery = time.Second
	}
	return &Server{
		world:      w,
		log:        logger,
		stateEvery: stateEvery,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sid := s.handshake(conn)
		if sid == "" {
			return
		}
		s.logf("observer %s connected from %s", sid, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Single writer goroutine: every post-handshake frame goes through
		// out, so the reader loop never touches the conn for writes.
		out := make(chan []byte, 64)
		go func() {
			ticker := time.NewTicker(s.stateEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					if err := writeMessage(conn, b); err != nil {
						cancel()
						return
					}
				case <-ticker.C:
					for {
						coord, ok := s.world.NextRegen()
						if !ok {
							break
						}
						if err := s.writeValue(conn, protocol.RegenMsg{
							Type:            protocol.TypeRegen,
							ProtocolVersion: protocol.Version,
							WorldID:         s.world.ID(),
							CX:              coord.X,
							CZ:              coord.Z,
						}); err != nil {
							cancel()
							return
						}
					}
					if err := s.writeValue(conn, s.stateMsg()); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: MOVE and SET_BLOCK commands. Replies are enqueued
		// onto out, never written here.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(out, protocol.ErrProtoBadRequest, "not JSON")
				continue
			}
			switch base.Type {
			case protocol.TypeMove:
				var mv protocol.MoveMsg
				if err := json.Unmarshal(msg, &mv); err != nil {
					s.sendError(out, protocol.ErrBadRequest, "bad MOVE")
					continue
				}
				s.world.SetPlayerPosition(mgl32.Vec3{mv.Pos[0], mv.Pos[1], mv.Pos[2]})
			case protocol.TypeSetBlock:
				var sb protocol.SetBlockMsg
				if err := json.Unmarshal(msg, &sb); err != nil {
					s.sendError(out, protocol.ErrBadRequest, "bad SET_BLOCK")
					continue
				}
				if sb.Block < 0 || sb.Block > 255 {
					s.sendError(out, protocol.ErrInvalidTarget, "block out of range")
					continue
				}
				if !s.world.SetBlock(sb.X, sb.Y, sb.Z, uint8(sb.Block), true, sb.Overwrite) {
					s.sendError(out, protocol.ErrBlocked, "block not placed")
				}
			default:
				s.sendError(out, protocol.ErrProtoBadRequest, "unexpected type "+base.Type)
			}
		}

		cancel()
		s.logf("observer %s disconnected", sid)
	}
}

// handshake runs before the writer goroutine exists, so it may write to the
// conn directly.
func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}

	sid := uuid.NewString()
	cfg := s.world.Config()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sid,
		WorldID:         cfg.ID,
		WorldParams: protocol.WorldParams{
			ChunkSize:    [3]int{store.Width, store.Height, store.Depth},
			ViewDistance: cfg.ViewDistance,
			MaxLight:     int(cfg.MaxLight),
			Seed:         cfg.Seed,
		},
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return ""
	}
	if err := writeMessage(conn, b); err != nil {
		return ""
	}
	return sid
}

func (s *Server) stateMsg() protocol.StateMsg {
	m := s.world.Metrics()
	pos := s.world.PlayerPosition()
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		WorldID:         s.world.ID(),
		State: protocol.WorldState{
			Hour:            m.Hour,
			Daylight:        int(m.Daylight),
			Daytime:         m.Daytime,
			PlayerPos:       [3]float32{pos.X(), pos.Y(), pos.Z()},
			CachedChunks:    m.CachedChunks,
			PendingUpdates:  m.PendingUpdates,
			VisibleChunks:   m.VisibleChunks,
			GeneratedChunks: m.GeneratedChunks,
			UpdateMS:        m.UpdateMS,
		},
	}
}

// sendError enqueues an ERROR frame for the writer goroutine. Dropped when
// the queue is full; the client is misbehaving at that point anyway.
func (s *Server) sendError(out chan<- []byte, code, detail string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         detail,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) writeValue(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return writeMessage(conn, b)
}

func writeMessage(conn *websocket.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}
