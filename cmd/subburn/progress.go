package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"subburn/internal/pipeline"
)

// progressDisplay renders pipeline stages as go-pretty progress bars. It is
// only used when stderr is a terminal; otherwise the log stream suffices.
type progressDisplay struct {
	writer progress.Writer
}

func newProgressDisplay(out io.Writer) pipeline.Progress {
	if !shouldColorize(out) {
		return nil
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(24)
	pw.SetStyle(progress.StyleDefault)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	go pw.Render()
	return &progressDisplay{writer: pw}
}

func (d *progressDisplay) Track(message string, total int64) pipeline.Tracker {
	tracker := &progress.Tracker{Message: message, Total: total, Units: progress.UnitsDefault}
	d.writer.AppendTracker(tracker)
	return &progressTracker{tracker: tracker}
}

func (d *progressDisplay) stop() {
	for d.writer.LengthActive() > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	d.writer.Stop()
}

type progressTracker struct {
	tracker *progress.Tracker
}

func (t *progressTracker) Advance(n int) { t.tracker.Increment(int64(n)) }

func (t *progressTracker) Set(value int64) {
	if value > t.tracker.Total {
		value = t.tracker.Total
	}
	t.tracker.SetValue(value)
}

func (t *progressTracker) Done() { t.tracker.MarkAsDone() }

func stopProgress(p pipeline.Progress) {
	if d, ok := p.(*progressDisplay); ok {
		d.stop()
	}
}
