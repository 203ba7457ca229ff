package model

// SubmitEvent models a form submission as it travels through the bound
// controllers. Controllers call PreventDefault to block the submission.
type SubmitEvent struct {
	defaultPrevented   bool
	propagationStopped bool
}

// NewSubmitEvent returns a fresh, unprevented submit event.
func NewSubmitEvent() *SubmitEvent {
	return &SubmitEvent{}
}

// PreventDefault blocks the submission.
func (e *SubmitEvent) PreventDefault() {
	if e != nil {
		e.defaultPrevented = true
	}
}

// StopPropagation stops later listeners from observing the event.
func (e *SubmitEvent) StopPropagation() {
	if e != nil {
		e.propagationStopped = true
	}
}

// DefaultPrevented reports whether the submission was blocked.
func (e *SubmitEvent) DefaultPrevented() bool {
	return e != nil && e.defaultPrevented
}

// PropagationStopped reports whether propagation was stopped.
func (e *SubmitEvent) PropagationStopped() bool {
	return e != nil && e.propagationStopped
}
