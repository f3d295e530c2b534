package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker renders generation progress as a terminal bar. It is fed percent
// values from coordinator progress messages, so the bar total is always 100.
type Tracker struct {
	bar       *progressbar.ProgressBar
	percent   atomic.Int64
	startTime time.Time
}

// New creates a tracker with an empty bar.
func New(description string) *Tracker {
	return &Tracker{
		startTime: time.Now(),
		bar: progressbar.NewOptions64(
			100,
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		),
	}
}

// Update moves the bar to the given percent and shows the phase.
func (t *Tracker) Update(percent int, phase string) {
	prev := t.percent.Swap(int64(percent))
	if t.bar != nil {
		t.bar.Describe(phase)
		if delta := int64(percent) - prev; delta > 0 {
			t.bar.Add64(delta)
		}
	}
}

// Finish completes the bar and prints the elapsed time.
func (t *Tracker) Finish(statements int) {
	if t.bar != nil {
		t.bar.Finish()
	}
	fmt.Println()
	fmt.Printf("Generated %d statements in %s\n",
		statements, time.Since(t.startTime).Round(time.Millisecond))
}
