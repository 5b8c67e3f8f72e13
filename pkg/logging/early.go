package logging

import (
	"fmt"
	"io"
	"os"
)

// EarlyLog writes plain lines to stderr before the structured logger is
// configured. Stdout stays free for command output.
type EarlyLog struct {
	err io.Writer
}

func NewEarlyLog() *EarlyLog {
	return &EarlyLog{err: os.Stderr}
}

func (l *EarlyLog) Error(msg string, args ...interface{}) {
	fmt.Fprintf(l.err, "ERROR: "+msg+"\n", args...)
}
