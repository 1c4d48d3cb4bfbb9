package server

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zucenko/pingwin/model"
	"github.com/zucenko/pingwin/protocol"
)

type SessionState int

const (
	GS_WAIT SessionState = iota
	GS_PLAY
	GS_EXTRA
	GS_OVER
)

// Session is the authoritative state of one game. Every exported method
// takes mu for its whole run; Board and the roster have no locking of their own.
type Session struct {
	mu sync.Mutex

	cfg    Config
	layout string

	State          SessionState
	Board          *model.Board
	PlayerSessions []*PlayerSession
	StartedAt      time.Time
	Deadline       time.Time

	connected int
	fishType  int
	rnd       *rand.Rand
	afterFunc func(time.Duration, func())

	writers  sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

type PlayerSession struct {
	Id     string
	Stream protocol.Stream

	MessagesToSend chan []byte
	closed         bool
	malformed      int
	moves          int

	DebugInMessages  int
	DebugOutMessages atomic.Int64
	DebugLastMessage time.Time
	DebugConnected   time.Time
}
