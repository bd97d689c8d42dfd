package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressReporter reports progress across the documents of one command.
type ProgressReporter interface {
	Start(total int)
	Done(name string, ok bool)
	Finish()
}

// NewProgressReporter writes a one-line progress bar to w. When w is nil
// or total is below two, nothing is drawn.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		return noProgress{}
	}
	return &barProgress{writer: w}
}

type noProgress struct{}

func (noProgress) Start(int)         {}
func (noProgress) Done(string, bool) {}
func (noProgress) Finish()           {}

type barProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	failed  int
}

const barWidth = 30

func (p *barProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.current, p.failed = total, 0, 0
	p.render("")
}

func (p *barProgress) Done(name string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if !ok {
		p.failed++
	}
	p.render(name)
}

func (p *barProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total < 2 {
		return
	}
	fmt.Fprintln(p.writer)
}

func (p *barProgress) render(name string) {
	if p.total < 2 {
		return
	}
	filled := barWidth * p.current / p.total
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	fmt.Fprintf(p.writer, "\r[%s] %d/%d documents, %d invalid %s", bar, p.current, p.total, p.failed, truncate(name, 40))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s + strings.Repeat(" ", n-len(s))
	}
	return "..." + s[len(s)-n+3:]
}
