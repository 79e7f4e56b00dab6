// Package command provides the token plumbing between input transports
// (serial link, web handler, stdin) and the sequencer. Transports push
// normalized tokens into a shared queue; the sequencer polls the queue
// without blocking, one token per poll cycle.
package command

import (
	"strings"

	"github.com/cjeanneret/DoorGo/internal/debug"
)

// Well-known command tokens.
const (
	TokenOn  = "#on"
	TokenOff = "#off"
)

// Source yields command tokens without blocking.
type Source interface {
	// Poll returns the next pending token, or ok=false when none is pending.
	Poll() (token string, ok bool)
}

// Queue is a buffered token source that any number of producers can feed.
type Queue struct {
	ch chan string
}

// NewQueue creates a queue holding at most size pending tokens.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 16
	}
	return &Queue{ch: make(chan string, size)}
}

// Push enqueues a token without blocking. When the queue is full the token
// is dropped and Push returns false; a stalled consumer must not wedge the
// transports feeding it.
func (q *Queue) Push(token string) bool {
	select {
	case q.ch <- token:
		return true
	default:
		debug.Live("Command queue full, dropping %q", token)
		return false
	}
}

// Poll returns the next pending token without blocking.
func (q *Queue) Poll() (string, bool) {
	select {
	case token := <-q.ch:
		return token, true
	default:
		return "", false
	}
}

// Normalize turns a raw input line into a command token: surrounding
// whitespace stripped, lowercased. The empty result means "no token".
func Normalize(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}
