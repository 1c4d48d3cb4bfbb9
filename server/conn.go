package server

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pingwin/protocol"
)

// ServeStream runs one client connection until it is closed.
func (s *Session) ServeStream(stream protocol.Stream) {
	ps, err := s.Connect(stream)
	if err != nil {
		return
	}
	defer s.Disconnect(ps)

	scanner := protocol.NewScanner(stream)
	for scanner.Scan() {
		s.Receive(ps, scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		log.WithField("player", ps.Id).Debugf("LoopChannelRead ended: %v", err)
	}
}

// ServeListener accepts raw TCP players until l is closed.
func (s *Session) ServeListener(l net.Listener) error {
	log.Infof("Listening for players on %s", l.Addr())
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Warnf("Accept: %v", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return err
		}
		go s.ServeStream(conn)
	}
}

// Accepting reports whether a new player could still join.
func (s *Session) Accepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State == GS_WAIT && len(s.PlayerSessions) < s.cfg.Players
}

func (s *Session) HandleHttpCall() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("HandleHttpCall - connection received from %s", r.RemoteAddr)
		if !s.Accepting() {
			log.Info("HandleHttpCall - rejected, server full")
			http.Error(w, ErrServerFull.Error(), http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		s.ServeStream(protocol.NewWebsocketStream(conn))
	}
}

func (ps *PlayerSession) send(m protocol.Message) {
	data, err := protocol.Frame(m)
	if err != nil {
		log.WithField("player", ps.Id).Errorf("Cant encode %s: %v", m.Kind(), err)
		return
	}
	ps.enqueue(data)
}

// enqueue never blocks; a client that cannot keep up is dropped.
func (ps *PlayerSession) enqueue(data []byte) {
	if ps.closed {
		return
	}
	select {
	case ps.MessagesToSend <- data:
	default:
		log.WithField("player", ps.Id).Warn("Send queue full, dropping client.")
		ps.close()
		ps.Stream.Close()
	}
}

// close stops queueing; the writer flushes what is left and closes the stream.
func (ps *PlayerSession) close() {
	if ps.closed {
		return
	}
	ps.closed = true
	close(ps.MessagesToSend)
}

// LoopChannelWrite only consumes, so a full buffer never stalls the session.
func (ps *PlayerSession) LoopChannelWrite() {
	logger := log.WithField("player", ps.Id)
	logger.Debug("LoopChannelWrite STARTED")
	failed := false
	for data := range ps.MessagesToSend {
		if failed {
			continue
		}
		if _, err := ps.Stream.Write(data); err != nil {
			logger.Warnf("LoopChannelWrite cant write: %v", err)
			failed = true
			ps.Stream.Close()
			continue
		}
		ps.DebugOutMessages.Add(1)
	}
	ps.Stream.Close()
	logger.Debug("LoopChannelWrite ENDED")
}
