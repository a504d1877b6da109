package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner shows the progress of a batch on stderr.
type Spinner struct {
	frames []string
	out    io.Writer

	mu      sync.Mutex
	message string
	running bool

	stop   sync.Once
	ticker *time.Ticker
	done   chan struct{}
}

func NewSpinner() *Spinner {
	return &Spinner{
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		out:    os.Stderr,
		ticker: time.NewTicker(time.Millisecond * 90),
		done:   make(chan struct{}),
	}
}

func (s *Spinner) SetMessage(msg string) {
	msg = strings.TrimSpace(msg)
	msg = strings.TrimRight(msg, ".")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

func (s *Spinner) Run(fn func()) {
	s.Start()
	defer s.Stop()
	fn()
}

func (s *Spinner) Stop() {
	s.stop.Do(func() {
		close(s.done)
		s.ticker.Stop()
		s.clearLine()
	})
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.run()
}

func (s *Spinner) run() {
	for i := 0; ; i++ {
		select {
		case <-s.ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			s.clearLine()
			io.WriteString(s.out, s.frames[i%len(s.frames)])
			if msg != "" {
				fmt.Fprintf(s.out, " %s...", msg)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Spinner) clearLine() {
	io.WriteString(s.out, "\x1b[0G\x1b[2K\x1b[0G")
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
