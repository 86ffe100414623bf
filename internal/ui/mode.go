package ui

// CaptureMode selects what the shutter key does.
type CaptureMode int

const (
	ModePhoto CaptureMode = iota
	ModeVideo
)

// Next cycles to the next capture mode.
func (c CaptureMode) Next() CaptureMode {
	switch c {
	case ModePhoto:
		return ModeVideo
	default:
		return ModePhoto
	}
}

// String returns the name of the capture mode.
func (c CaptureMode) String() string {
	switch c {
	case ModeVideo:
		return "video"
	default:
		return "photo"
	}
}

// Icon returns a visual indicator for the capture mode.
func (c CaptureMode) Icon() string {
	switch c {
	case ModeVideo:
		return "[VIDEO]"
	default:
		return "[PHOTO]"
	}
}
