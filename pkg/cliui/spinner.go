package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner animates a single status line until Stop replaces it with a
// result mark and the elapsed time. On a non-terminal writer nothing is
// drawn until Stop.
type Spinner struct {
	w     io.Writer
	msg   string
	start time.Time

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// StartSpinner begins animating msg on w.
func StartSpinner(w io.Writer, msg string) *Spinner {
	s := &Spinner{w: w, msg: msg, start: time.Now(), done: make(chan struct{})}
	if !IsTerminal(w) {
		return s
	}

	s.wg.Add(1)
	go s.animate()
	return s
}

func (s *Spinner) animate() {
	defer s.wg.Done()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)
		s.mu.Unlock()

		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and prints the final line for err. It must be
// called exactly once.
func (s *Spinner) Stop(err error) {
	close(s.done)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r  %s %s %s\n", Mark(err), s.msg,
		StepStyle.Render("("+FormatDuration(time.Since(s.start))+")"))
}

// Step runs fn under a spinner labelled msg and returns fn's error.
func Step(w io.Writer, msg string, fn func() error) error {
	s := StartSpinner(w, msg)
	err := fn()
	s.Stop(err)
	return err
}
