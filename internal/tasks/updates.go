package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a sync.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline stage
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Fraction returns Step/Total clamped to [0, 1]. An unknown total yields 0.
func (u ProgressUpdate) Fraction() float64 {
	if u.Total <= 0 {
		return 0
	}
	return min(max(float64(u.Step)/float64(u.Total), 0), 1)
}

// Pipeline stage enumeration, in execution order
type Phase int

const (
	Authorize Phase = iota
	FetchSubscriptions
	EncodeOPML
	ImportOPML
	Completed
)

func (p Phase) String() string {
	switch p {
	case Authorize:
		return "authorize"
	case FetchSubscriptions:
		return "fetch_subscriptions"
	case EncodeOPML:
		return "encode_opml"
	case ImportOPML:
		return "import_opml"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

func authorizeUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Authorize, Step: 0, Total: 1, Message: "Authorizing with YouTube..."}
}

func fetchPageUpdate(current, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSubscriptions,
		Step:    current,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d/%d subscriptions", current, total),
	}
}

func encodeUpdate(count int, category string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EncodeOPML,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Encoded %d feeds into category %q", count, category),
	}
}

func uploadUpdate(name string, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportOPML,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Uploading OPML (%d bytes) to %s...", size, name),
	}
}

func completedUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Imported %d events (%d added)", result.Summary.Total, len(result.Summary.Added)),
		Data:    result,
	}
}
