// reader.go - Control-thread stdin frame reader

// License: GPLv3 or later

package serial

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Reader puts stdin into raw mode and assembles six-byte command frames
// from it, handing each decoded Command to a callback. It mirrors the
// original terminal host's non-blocking read loop with a stop channel,
// generalized from single-keystroke routing to fixed-size frame assembly.
type Reader struct {
	onCommand func(Command)
	onReject  func()

	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewReader creates a reader that invokes onCommand for every well-formed
// frame and onReject (if non-nil) for every frame that fails to decode.
func NewReader(onCommand func(Command), onReject func()) *Reader {
	return &Reader{
		onCommand: onCommand,
		onReject:  onReject,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start puts stdin into raw, non-blocking mode and begins assembling frames
// in a background goroutine. Call Stop to restore stdin.
func (r *Reader) Start() error {
	r.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		close(r.done)
		return fmt.Errorf("serial: failed to set raw mode: %w", err)
	}
	r.oldTermState = oldState

	if err := syscall.SetNonblock(r.fd, true); err != nil {
		_ = term.Restore(r.fd, r.oldTermState)
		r.oldTermState = nil
		close(r.done)
		return fmt.Errorf("serial: failed to set nonblocking stdin: %w", err)
	}
	r.nonblockSet = true

	go r.loop()
	return nil
}

func (r *Reader) loop() {
	defer close(r.done)

	var frame [FrameSize]byte
	have := 0
	buf := make([]byte, 1)

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		n, err := syscall.Read(r.fd, buf)
		if n > 0 {
			frame[have] = buf[0]
			have++
			if have == FrameSize {
				if cmd, ok := Decode(frame[:]); ok {
					r.onCommand(cmd)
				} else if r.onReject != nil {
					r.onReject()
				}
				have = 0
			}
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Stop terminates the reader goroutine and restores stdin to its original
// mode. Safe to call multiple times.
func (r *Reader) Stop() {
	r.stopped.Do(func() {
		close(r.stopCh)
	})
	<-r.done
	if r.nonblockSet {
		_ = syscall.SetNonblock(r.fd, false)
		r.nonblockSet = false
	}
	if r.oldTermState != nil {
		_ = term.Restore(r.fd, r.oldTermState)
		r.oldTermState = nil
	}
}
