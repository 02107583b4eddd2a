package newsfeedclient

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

const consoleQueueDepth = 256

// Console interleaves two kinds of output on one terminal: immediate lines
// from the REPL itself, and queued lines produced by background goroutines
// (responses, arriving news). Queued lines are held until the user asks to
// flush, so they never tear the prompt apart mid-edit.
type Console struct {
	in  *bufio.Scanner
	out io.Writer

	mu    sync.Mutex
	queue chan string
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:    bufio.NewScanner(in),
		out:   out,
		queue: make(chan string, consoleQueueDepth),
	}
}

// ReadLine prompts and blocks for one line of input. ok is false at end of
// input.
func (c *Console) ReadLine() (line string, ok bool) {
	fmt.Fprint(c.out, "\n? ")
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

// Print writes a line immediately.
func (c *Console) Print(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "* "+format+"\n", args...)
}

// Enqueue holds a line for the next flush. A full queue drops the oldest
// line rather than blocking the producer.
func (c *Console) Enqueue(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	for {
		select {
		case c.queue <- line:
			return
		default:
			select {
			case <-c.queue:
			default:
			}
		}
	}
}

// Flush drains every queued line to the terminal.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case line := <-c.queue:
			fmt.Fprintf(c.out, "* %s\n", line)
		default:
			return
		}
	}
}

// FlushFor keeps draining the queue for the given duration, so the user can
// watch news arrive live.
func (c *Console) FlushFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for {
		c.Flush()
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if remaining > 250*time.Millisecond {
			remaining = 250 * time.Millisecond
		}
		time.Sleep(remaining)
	}
}
