package dome

import "time"

// FrameID identifies a scheduled frame callback.
type FrameID uint64

// FrameLoop schedules callbacks for the next rendered frame.
//
// Callbacks requested while a frame is running are deferred to the following frame,
// and cancelled callbacks never run, even when cancelled by an earlier callback of the
// same frame.
type FrameLoop struct {
	next    FrameID
	pending []frameEntry
	running []frameEntry
	now     time.Time
}

type frameEntry struct {
	id FrameID
	fn func(now time.Time)
}

// Request schedules fn for the next frame and returns its handle.
func (f *FrameLoop) Request(fn func(now time.Time)) FrameID {
	f.next++
	f.pending = append(f.pending, frameEntry{id: f.next, fn: fn})
	return f.next
}

// Cancel removes a scheduled callback. Unknown or already-run ids are ignored.
func (f *FrameLoop) Cancel(id FrameID) {
	if id == 0 {
		return
	}
	for i, e := range f.pending {
		if e.id == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
	for i, e := range f.running {
		if e.id == id {
			f.running[i].fn = nil
			return
		}
	}
}

// Pending returns the number of callbacks waiting for a frame.
func (f *FrameLoop) Pending() int {
	return len(f.pending)
}

// Now returns the timestamp of the most recent frame.
func (f *FrameLoop) Now() time.Time {
	return f.now
}

// Run executes every callback that was pending when the frame began.
func (f *FrameLoop) Run(now time.Time) {
	f.now = now
	f.running = f.pending
	f.pending = nil
	for i := range f.running {
		fn := f.running[i].fn
		if fn == nil {
			continue
		}
		f.running[i].fn = nil
		fn(now)
	}
	f.running = nil
}
