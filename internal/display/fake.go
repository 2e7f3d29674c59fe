package display

// FakeSink records rendered frames for test assertions.
type FakeSink struct {
	// Frames contains every frame passed to Render.
	Frames []Frame

	// W is the reported width; DefaultWidth when zero.
	W int

	// RenderError, if set, will be returned by Render.
	RenderError error
}

// NewFakeSink creates a FakeSink of the default panel width.
func NewFakeSink() *FakeSink {
	return &FakeSink{W: DefaultWidth}
}

// Render records the frame.
func (f *FakeSink) Render(fr Frame) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.Frames = append(f.Frames, fr)
	return nil
}

// Width returns the configured width.
func (f *FakeSink) Width() int {
	if f.W == 0 {
		return DefaultWidth
	}
	return f.W
}

// Last returns the most recent frame, or the zero Frame.
func (f *FakeSink) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames.
func (f *FakeSink) Reset() {
	f.Frames = nil
	f.RenderError = nil
}
