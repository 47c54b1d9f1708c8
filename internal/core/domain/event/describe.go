package event

import "strings"

// MaxStacktraceFrames caps both the exception chain and the number of stack
// frames handed to the model.
const MaxStacktraceFrames = 30

// blockedTags are stripped before an event leaves the system. They are
// unstable between events of the same issue and carry no signal the model
// can use.
var blockedTags = map[string]struct{}{
	"user":           {},
	"server_name":    {},
	"release":        {},
	"handled":        {},
	"client_os":      {},
	"client_os.name": {},
	"browser":        {},
	"browser.name":   {},
	"environment":    {},
	"runtime":        {},
	"device":         {},
	"device.family":  {},
	"gpu":            {},
	"gpu.name":       {},
	"gpu.vendor":     {},
	"url":            {},
	"trace":          {},
	"otel":           {},
}

// Description is the sanitized view of an event that is serialized into the
// user message of the completion request.
type Description struct {
	Tags       map[string]string      `json:"tags,omitempty"`
	Exceptions []ExceptionDescription `json:"exceptions"`
	Message    string                 `json:"message,omitempty"`
}

// ExceptionDescription is one exception of the chain, most recent first.
type ExceptionDescription struct {
	RaisedDuringHandling bool               `json:"raised_during_handling_of_previous_exception,omitempty"`
	Number               int                `json:"number"`
	Type                 string             `json:"type"`
	Message              string             `json:"message"`
	Meta                 map[string]any     `json:"meta,omitempty"`
	Unhandled            bool               `json:"unhandled,omitempty"`
	Stacktrace           []FrameDescription `json:"stacktrace,omitempty"`
}

// FrameDescription is a single frame, most recent call first. The frame
// fields are always emitted, even when empty, so sparse frames keep the
// same serialized shape.
type FrameDescription struct {
	Func        string `json:"func"`
	Module      string `json:"module"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	InApp       bool   `json:"in_app,omitempty"`
	CrashedHere bool   `json:"crashed_here,omitempty"`
	Code        string `json:"code,omitempty"`
}

// DescribeForAI builds the sanitized description of an event: blocked tags
// removed, exception chain reversed so the most recent exception comes
// first, stack traces reversed likewise and trimmed to the frame allowance.
func DescribeForAI(e *Event) *Description {
	desc := &Description{Exceptions: []ExceptionDescription{}}

	if len(e.Tags) > 0 {
		tags := make(map[string]string)
		for _, tag := range e.Tags {
			if _, blocked := blockedTags[tag[0]]; !blocked {
				tags[tag[0]] = tag[1]
			}
		}
		if len(tags) > 0 {
			desc.Tags = tags
		}
	}

	chain := e.Exceptions
	if len(chain) > MaxStacktraceFrames {
		chain = chain[:MaxStacktraceFrames]
	}
	for idx := 0; idx < len(chain); idx++ {
		exc := chain[len(chain)-1-idx]
		out := ExceptionDescription{
			Number:  idx + 1,
			Type:    exc.Type,
			Message: exc.Value,
		}
		if idx > 0 {
			out.RaisedDuringHandling = true
		}
		if exc.Mechanism != nil {
			if len(exc.Mechanism.Meta) > 0 {
				out.Meta = exc.Mechanism.Meta
			}
			if exc.Mechanism.Handled != nil && !*exc.Mechanism.Handled {
				out.Unhandled = true
			}
		}
		if exc.Stacktrace != nil && len(exc.Stacktrace.Frames) > 0 {
			frames := exc.Stacktrace.Frames
			stacktrace := make([]FrameDescription, 0, len(frames))
			crashMarked := false
			for i := len(frames) - 1; i >= 0; i-- {
				frame := frames[i]
				fd := FrameDescription{
					Func:   frame.Function,
					Module: frame.Module,
					File:   frame.Filename,
					Line:   frame.LineNo,
					InApp:  frame.InApp,
				}
				if frame.InApp {
					if !crashMarked {
						fd.CrashedHere = true
						crashMarked = true
					}
					if line := strings.TrimSpace(frame.ContextLine); line != "" {
						fd.Code = line
					}
				}
				stacktrace = append(stacktrace, fd)
			}
			out.Stacktrace = TrimFrames(stacktrace, MaxStacktraceFrames)
		}
		desc.Exceptions = append(desc.Exceptions, out)
	}

	desc.Message = e.Message
	return desc
}

// TrimFrames reduces frames to at most allowance entries while keeping the
// top and bottom of the trace. System frames give way first: the middle of
// the system-frame list is dropped, and only if that is not enough does the
// middle of the app-frame list go too. Relative order is preserved.
func TrimFrames(frames []FrameDescription, allowance int) []FrameDescription {
	if len(frames) <= allowance {
		return frames
	}

	var appIdx, sysIdx []int
	for i, f := range frames {
		if f.InApp {
			appIdx = append(appIdx, i)
		} else {
			sysIdx = append(sysIdx, i)
		}
	}

	remaining := len(frames) - allowance
	deleted := make([]bool, len(frames))
	appCount := len(appIdx)

	sysAllowance := allowance - appCount
	if sysAllowance < 0 {
		sysAllowance = 0
	}
	if sysAllowance > 0 {
		for _, i := range middle(sysIdx, sysAllowance/2) {
			deleted[i] = true
			remaining--
		}
	} else {
		for _, i := range sysIdx {
			deleted[i] = true
			remaining--
		}
	}

	if remaining > 0 {
		appAllowance := appCount - remaining
		for _, i := range middle(appIdx, appAllowance/2) {
			deleted[i] = true
		}
	}

	out := make([]FrameDescription, 0, allowance)
	for i, f := range frames {
		if !deleted[i] {
			out = append(out, f)
		}
	}
	return out
}

// middle returns s[half : len(s)-half]. A half of zero selects nothing, so
// short lists survive trimming untouched.
func middle(s []int, half int) []int {
	if half <= 0 || len(s)-half < half {
		return nil
	}
	return s[half : len(s)-half]
}
