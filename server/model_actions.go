package server

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pingwin/model"
	"github.com/zucenko/pingwin/protocol"
)

func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := cfg.Load()
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		cfg:            cfg,
		layout:         layout,
		State:          GS_WAIT,
		PlayerSessions: make([]*PlayerSession, 0, cfg.Players),
		rnd:            rand.New(rand.NewSource(seed)),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		done: make(chan struct{}),
	}, nil
}

// Done is closed once the game is over.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Connect registers a new client. After the game has started the stream is
// closed straight away and ErrServerFull returned.
func (s *Session) Connect(stream protocol.Stream) (*PlayerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected++
	id := playerId(stream.RemoteAddr(), s.connected)
	logger := log.WithField("player", id)

	if s.State != GS_WAIT || len(s.PlayerSessions) >= s.cfg.Players {
		logger.Info("Client rejected, server full.")
		stream.Close()
		return nil, ErrServerFull
	}

	logger.Infof("Client connected from address %v.", stream.RemoteAddr())
	ps := &PlayerSession{
		Id:             id,
		Stream:         stream,
		MessagesToSend: make(chan []byte, s.cfg.SendQueue),
		DebugConnected: time.Now(),
	}
	s.writers.Add(1)
	go func() {
		defer s.writers.Done()
		ps.LoopChannelWrite()
	}()
	s.PlayerSessions = append(s.PlayerSessions, ps)

	ps.send(&protocol.Welcome{PlayerId: id, LevelName: s.cfg.LevelName})

	if len(s.PlayerSessions) == s.cfg.Players {
		log.Infof("Got required number of %d players.", s.cfg.Players)
		s.startGame()
	}
	return ps, nil
}

func (s *Session) Disconnect(ps *PlayerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ps)
	if i < 0 {
		return
	}
	s.PlayerSessions = append(s.PlayerSessions[:i], s.PlayerSessions[i+1:]...)
	ps.close()
	log.WithField("player", ps.Id).Info("Client disconnected.")

	if s.Board != nil {
		s.Board.RemovePenguin(ps.Id)
	}
	if s.State.InProgress() {
		log.Info("Game interrupted by a lost player.")
		s.endGame()
	}
}

// Receive handles one record read from the client.
func (s *Session) Receive(ps *PlayerSession, record []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(ps) < 0 {
		return
	}
	logger := log.WithField("player", ps.Id)
	ps.DebugInMessages++
	ps.DebugLastMessage = time.Now()

	m, err := protocol.Decode(record)
	if err != nil {
		ps.malformed++
		logger.Warnf("Dropping malformed message (%d in a row): %v", ps.malformed, err)
		if ps.malformed >= s.cfg.MaxMalformed {
			logger.Warn("Too many malformed messages, closing connection.")
			ps.close()
		}
		return
	}
	ps.malformed = 0

	if !s.State.InProgress() {
		logger.Debugf("Ignoring %s, game is %s.", m.Kind(), s.State.Name())
		return
	}

	switch m := m.(type) {
	case *protocol.MoveMeTo:
		s.moveMeTo(ps, m.Direction)
	case *protocol.TurnMeTo:
		s.turnMeTo(ps, m.Direction)
	default:
		logger.Warnf("Ignoring unexpected %s from client.", m.Kind())
	}
}

func (s *Session) moveMeTo(ps *PlayerSession, d model.Direction) {
	logger := log.WithField("player", ps.Id)
	p := s.Board.Penguin(ps.Id)
	if p == nil {
		return
	}
	if !d.Valid() {
		logger.Warnf("Ignoring moveTo(%q), unknown direction.", d)
		return
	}
	// Moving only paces remote animation. The mover has already applied the
	// move locally, so it is never a reason to reject one.
	if p.Moving {
		logger.Debugf("moveTo(%s) before the previous move settled.", d)
	}
	if !s.Board.MovePenguin(ps.Id, d) {
		logger.Infof("Rejected moveTo(%s) from (%d,%d).", d, p.X, p.Y)
		return
	}

	logger.Debugf("Received moveTo(%s), sending to other.", d)
	s.broadcast(&protocol.MoveOtherTo{PenguinId: ps.Id, Direction: d}, ps)

	if fish := s.Board.PenguinAteFish(ps.Id); fish != nil {
		count := p.EatFish()
		logger.Debugf("Ate fish at (%d,%d), has %d.", fish.X, fish.Y, count)
		s.broadcast(&protocol.ScoreUpdate{PenguinId: ps.Id, FishCount: count}, nil)
	}
	if s.Board.IsWaterTile(p.X, p.Y) {
		count := p.DropIntoWater()
		logger.Debugf("Fell into water at (%d,%d), has %d.", p.X, p.Y, count)
		s.broadcast(&protocol.ScoreUpdate{PenguinId: ps.Id, FishCount: count}, nil)
	}

	if s.cfg.MoveDebounce > 0 {
		p.Moving = true
		ps.moves++
		n := ps.moves
		s.runAfter(s.cfg.MoveDebounce, func() {
			// a later move keeps the penguin moving
			if ps.moves == n {
				p.Stop()
			}
		})
	}
}

func (s *Session) turnMeTo(ps *PlayerSession, d model.Direction) {
	p := s.Board.Penguin(ps.Id)
	if p == nil {
		return
	}
	if !d.Valid() {
		log.WithField("player", ps.Id).Warnf("Ignoring turnTo(%q), unknown direction.", d)
		return
	}
	p.Facing = d
	s.broadcast(&protocol.TurnOtherTo{PenguinId: ps.Id, Direction: d}, ps)
}

func (s *Session) startGame() {
	board, err := model.NewBoard(s.layout)
	if err != nil {
		log.Errorf("Cant build board: %v", err)
		s.endGame()
		return
	}
	board.SetRand(s.rnd)

	players := len(s.PlayerSessions)
	tiles, err := board.RandomUnoccupiedTiles(players + s.cfg.Fishes)
	if err != nil {
		log.Errorf("Cant place penguins and fishes: %v", err)
		s.endGame()
		return
	}

	penguins := make([]*model.Penguin, 0, players)
	for i, ps := range s.PlayerSessions {
		penguins = append(penguins, &model.Penguin{
			Id:     ps.Id,
			Number: i + 1,
			X:      tiles[i].X,
			Y:      tiles[i].Y,
			Facing: model.Down,
			Color:  model.Colors[i%len(model.Colors)],
		})
	}
	fishes := make([]*model.Fish, 0, s.cfg.Fishes)
	for _, tile := range tiles[players:] {
		fishes = append(fishes, &model.Fish{Type: s.nextFishType(), X: tile.X, Y: tile.Y})
	}
	board.SetPenguins(penguins)
	board.SetFishes(fishes)

	s.Board = board
	s.State = GS_PLAY
	s.StartedAt = time.Now()
	s.Deadline = s.StartedAt.Add(s.cfg.GameDuration)

	start := &protocol.StartGame{
		Penguins:     make([]model.Penguin, 0, len(penguins)),
		Fishes:       make([]model.Fish, 0, len(fishes)),
		GameDuration: seconds(s.cfg.GameDuration),
	}
	for _, p := range penguins {
		start.Penguins = append(start.Penguins, *p)
	}
	for _, f := range fishes {
		start.Fishes = append(start.Fishes, *f)
	}
	log.Info("Sending start game message.")
	s.broadcast(start, nil)

	s.runEach(s.cfg.NewFishDelay, s.spawnFish)
	s.runAfter(s.cfg.GameDuration, s.timeUp)
}

// spawnFish tops the board up by one fish. It reports whether the game is
// still running.
func (s *Session) spawnFish() bool {
	if !s.State.InProgress() {
		return false
	}
	if len(s.Board.Fishes()) >= s.cfg.Fishes {
		return true
	}
	tile, err := s.Board.RandomUnoccupiedTile()
	if err != nil {
		log.Warnf("No room for a new fish: %v", err)
		return true
	}
	fish := &model.Fish{Type: s.nextFishType(), X: tile.X, Y: tile.Y}
	s.Board.AddFish(fish)
	log.Debugf("New fish at (%d,%d).", fish.X, fish.Y)
	s.broadcast(&protocol.NewFish{Fish: *fish}, nil)
	return true
}

func (s *Session) timeUp() {
	if !s.State.InProgress() {
		return
	}
	if s.Board.NoWinner() {
		s.State = GS_EXTRA
		s.Deadline = time.Now().Add(s.cfg.Extension)
		log.Infof("No single leader at %d fish, game extended by %s.", s.Board.BestFishCount(), s.cfg.Extension)
		s.broadcast(&protocol.RiseGameDuration{Seconds: seconds(s.cfg.Extension)}, nil)
		s.runAfter(s.cfg.Extension, s.timeUp)
		return
	}
	s.endGame()
}

func (s *Session) endGame() {
	if s.State == GS_OVER {
		return
	}
	s.State = GS_OVER
	if s.Board != nil {
		if leader := s.Board.Leader(); leader != nil {
			log.WithField("player", leader.Id).Infof("%s wins with %d fish.", leader.Name(), leader.FishCount)
		}
	}
	log.Info("Sending end game message.")
	s.broadcast(&protocol.EndGame{}, nil)
	for _, ps := range s.PlayerSessions {
		ps.close()
	}
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Shutdown ends the game and waits until queued messages are written.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.endGame()
	s.mu.Unlock()

	flushed := make(chan struct{})
	go func() {
		s.writers.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for _, ps := range s.PlayerSessions {
			ps.Stream.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:   s.State.Name(),
		Level:   s.cfg.LevelName,
		Wanted:  s.cfg.Players,
		Players: make([]PlayerStatus, 0, len(s.PlayerSessions)),
	}
	for _, ps := range s.PlayerSessions {
		row := PlayerStatus{
			Id:          ps.Id,
			Addr:        fmt.Sprint(ps.Stream.RemoteAddr()),
			InMessages:  ps.DebugInMessages,
			OutMessages: int(ps.DebugOutMessages.Load()),
			LastMessage: ps.DebugLastMessage,
			Connected:   ps.DebugConnected,
		}
		if s.Board != nil {
			if p := s.Board.Penguin(ps.Id); p != nil {
				row.Name = p.Name()
				row.X, row.Y, row.FishCount = p.X, p.Y, p.FishCount
			}
		}
		st.Players = append(st.Players, row)
	}
	if s.Board != nil {
		st.Fishes = len(s.Board.Fishes())
	}
	if s.State.InProgress() {
		if remaining := time.Until(s.Deadline); remaining > 0 {
			st.Remaining = remaining
		}
	}
	return st
}

func (s *Session) broadcast(m protocol.Message, except *PlayerSession) {
	data, err := protocol.Frame(m)
	if err != nil {
		log.Errorf("Cant encode %s: %v", m.Kind(), err)
		return
	}
	for _, ps := range s.PlayerSessions {
		if ps != except {
			ps.enqueue(data)
		}
	}
}

// runAfter calls f under the session lock once d has passed.
func (s *Session) runAfter(d time.Duration, f func()) {
	s.afterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		f()
	})
}

// runEach calls f every d until it returns false.
func (s *Session) runEach(d time.Duration, f func() bool) {
	var tick func()
	tick = func() {
		if f() {
			s.runAfter(d, tick)
		}
	}
	s.runAfter(d, tick)
}

func (s *Session) indexOf(ps *PlayerSession) int {
	for i, other := range s.PlayerSessions {
		if other == ps {
			return i
		}
	}
	return -1
}

func (s *Session) nextFishType() int {
	t := s.fishType
	s.fishType = (s.fishType + 1) % model.FishTypes
	return t
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}

// playerId derives an opaque id from the connection and the moment it was made.
func playerId(addr net.Addr, seq int) string {
	name := fmt.Sprintf("%v|%d|%d", addr, time.Now().UnixNano(), seq)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
