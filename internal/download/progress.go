package download

// ProgressSink receives transfer progress from whichever engine is doing
// the work, keeping the rendering technology out of download logic.
type ProgressSink interface {
	// Report updates completed/total byte counts. A total of 0 means the
	// total is not known yet.
	Report(completed, total int64)
	// SetDescription replaces the free-form status text (speed, ETA,
	// engine notes).
	SetDescription(text string)
}

type nopSink struct{}

func (nopSink) Report(completed, total int64) {}
func (nopSink) SetDescription(text string)    {}
