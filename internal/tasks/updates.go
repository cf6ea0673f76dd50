package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSection Phase = iota
	WriteSection
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchSection:
		return "fetch_section"
	case WriteSection:
		return "write_section"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingSectionUpdate(step, total int, section string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, section),
	}
}

func sectionCompletedUpdate(step, total int, res SectionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d rows)", step, total, res.Section, res.Rows),
		Data:    res,
	}
}

func sectionFailedUpdate(step, total int, res SectionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Section, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
	}
}

// sendProgress delivers u without blocking; updates are dropped when nobody is reading.
func sendProgress(prog chan<- ProgressUpdate, u ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- u:
	default:
	}
}
