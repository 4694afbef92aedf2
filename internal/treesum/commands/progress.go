package commands

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const progressInterval = 200 * time.Millisecond

// progressReporter periodically prints a counter to a status stream. It
// only reads the counter, so workers are never blocked by it.
type progressReporter struct {
	w       io.Writer
	label   string
	total   int64
	counter *atomic.Int64
	live    bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// startProgress begins reporting counter against total. Live updates are
// drawn only when w is a terminal; the final line is always printed by Stop.
func startProgress(w io.Writer, label string, total int, counter *atomic.Int64) *progressReporter {
	p := &progressReporter{
		w:       w,
		label:   label,
		total:   int64(total),
		counter: counter,
		live:    isTerminal(w),
		stop:    make(chan struct{}),
	}
	if p.live {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *progressReporter) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			fmt.Fprintf(p.w, "\r%s", p.line(p.counter.Load()))
		}
	}
}

// Stop ends live reporting and prints the final count.
func (p *progressReporter) Stop() {
	close(p.stop)
	p.wg.Wait()
	prefix := ""
	if p.live {
		prefix = "\r"
	}
	fmt.Fprintf(p.w, "%s%s\n", prefix, p.line(p.counter.Load()))
}

func (p *progressReporter) line(n int64) string {
	return fmt.Sprintf("%s: %s/%s", p.label, humanize.Comma(n), humanize.Comma(p.total))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
