package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"
)

// Spinner is a terminal progress indicator drawn on a single line.
type Spinner struct {
	// StopMsg is printed once the spinner has been stopped.
	StopMsg string

	mu      sync.Mutex
	w       io.Writer
	msg     string
	delay   time.Duration
	last    int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns a spinner writing msg and the animation to stderr every d.
func NewSpinner(msg string, d time.Duration) *Spinner {
	return &Spinner{w: os.Stderr, msg: msg, delay: d}
}

// SetWriter redirects the spinner output.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// Start starts the animation. It is a no-op on a running spinner.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.cursor(hideCursor)

	go s.loop(s.stop, s.done)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		line := fmt.Sprintf("\r%s%s %c%s", s.msg, SuccessColor, spinnerFrames[i%len(spinnerFrames)], DefaultColor)
		fmt.Fprint(s.w, line)
		s.last = utf8.RuneCountInString(line)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop stops the animation, clears its line and prints StopMsg.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.cursor(showCursor)
	if s.StopMsg != "" {
		fmt.Fprint(s.w, s.StopMsg)
	}
}

// RestoreCursor makes the terminal cursor visible again.
func (s *Spinner) RestoreCursor() {
	s.mu.Lock()
	s.cursor(showCursor)
	s.mu.Unlock()
}

// cursor writes an escape sequence, windows consoles ignore them. Callers hold mu.
func (s *Spinner) cursor(seq string) {
	if runtime.GOOS != "windows" {
		fmt.Fprint(s.w, seq)
	}
}

func (s *Spinner) clear() {
	if runtime.GOOS == "windows" {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.last)+"\r")
	} else {
		fmt.Fprint(s.w, clearLine)
	}
	s.last = 0
}
