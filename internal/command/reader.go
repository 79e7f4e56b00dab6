package command

import (
	"bufio"
	"io"

	"github.com/cjeanneret/DoorGo/internal/debug"
)

// ReadLines reads lines from r until EOF, normalizes each one and pushes
// the non-empty tokens into q. It is meant to run in its own goroutine,
// one per transport (serial link, stdin).
func ReadLines(r io.Reader, q *Queue) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		token := Normalize(scanner.Text())
		if token == "" {
			continue
		}
		debug.Command(token)
		q.Push(token)
	}
	return scanner.Err()
}
