package pipeline

// Tracker reports progress for one step.
type Tracker interface {
	Advance(n int)
	Set(value int64)
	Done()
}

// Progress creates trackers for pipeline steps.
type Progress interface {
	Track(message string, total int64) Tracker
}

type nopProgress struct{}

func (nopProgress) Track(string, int64) Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Advance(int) {}
func (nopTracker) Set(int64) {}
func (nopTracker) Done() {}
