package flows

// Status is the terminal outcome of a flow invocation.
type Status uint8

const (
	StatusSucceeded Status = iota
	StatusFailed
	// StatusRedirectRequired asks the caller to navigate to Location outside
	// the client (OAuth). The flow never resolves locally.
	StatusRedirectRequired
	// StatusSkipped means the flow had nothing to do.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusRedirectRequired:
		return "redirect_required"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is returned by every flow. Location is the navigation target, empty
// when the flow does not navigate. Err is set for failed results and is
// informational: flows have already dispatched the matching alert.
type Result struct {
	Status   Status
	Location string
	Err      error
}

// OK reports whether the flow succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

func succeeded(location string) Result {
	return Result{Status: StatusSucceeded, Location: location}
}

func failed(location string, err error) Result {
	return Result{Status: StatusFailed, Location: location, Err: err}
}

func redirect(location string) Result {
	return Result{Status: StatusRedirectRequired, Location: location}
}

func skipped(err error) Result {
	return Result{Status: StatusSkipped, Err: err}
}
