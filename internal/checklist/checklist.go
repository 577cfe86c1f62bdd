// Package checklist parses the roadmap document into typed items.
//
// The document is the source of truth for task progress: every read
// produces a fresh, disposable view. Items carry no identity across
// parses beyond the embedded task id.
package checklist

import (
	"regexp"
	"strings"
)

// Status is the parsed state of a checklist item marker.
type Status int

const (
	StatusPending    Status = iota // - [ ]
	StatusInProgress               // - [>]
	StatusCompleted                // - [x]
	StatusBlocked                  // - [!]
	StatusSkipped                  // - [-]
)

// String returns the human-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusBlocked:
		return "blocked"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status ends the item's lifecycle as far
// as the loop is concerned. Blocked and skipped items do not keep the
// loop alive.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusBlocked || s == StatusSkipped
}

// Item is one checklist line.
type Item struct {
	Raw         string // the original line, untrimmed
	Status      Status
	Description string
	ID          string // "TASK-NNN" when the description carries the prefix, else empty
}

// Warning flags a marker-like line that was excluded from progress
// accounting, such as "[X]" instead of "[x]".
type Warning struct {
	Line int // 1-based line number in the document
	Text string
}

// Summary holds per-status counts for one parse of the document.
type Summary struct {
	Pending      int     `json:"pending"`
	InProgress   int     `json:"in_progress"`
	Completed    int     `json:"completed"`
	Blocked      int     `json:"blocked"`
	Skipped      int     `json:"skipped"`
	Total        int     `json:"total"`
	CurrentPhase string  `json:"current_phase,omitempty"`
	Fraction     float64 `json:"fraction"`
}

// Document is the parsed view of one roadmap text.
type Document struct {
	Items        []Item
	Warnings     []Warning
	CurrentPhase string
}

var (
	taskIDRe       = regexp.MustCompile(`^(TASK-\d+):`)
	currentPhaseRe = regexp.MustCompile(`^##\s*Current[:\s]+(.+)$`)
)

// Parse reads the roadmap text into an ordered Document. Lines that do
// not look like checklist items are ignored; marker-like lines with an
// unrecognized marker are reported as warnings and excluded from the
// item list.
func Parse(text string) *Document {
	doc := &Document{}

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := currentPhaseRe.FindStringSubmatch(trimmed); m != nil {
			doc.CurrentPhase = strings.TrimSpace(m[1])
			continue
		}

		if !strings.HasPrefix(trimmed, "- [") {
			continue
		}
		end := strings.IndexByte(trimmed, ']')
		if end < 0 {
			continue
		}

		marker := trimmed[3:end]
		status, ok := statusFromMarker(marker)
		if !ok {
			doc.Warnings = append(doc.Warnings, Warning{Line: i + 1, Text: trimmed})
			continue
		}

		desc := strings.TrimSpace(trimmed[end+1:])
		item := Item{
			Raw:         line,
			Status:      status,
			Description: desc,
		}
		if m := taskIDRe.FindStringSubmatch(desc); m != nil {
			item.ID = m[1]
		}
		doc.Items = append(doc.Items, item)
	}

	return doc
}

func statusFromMarker(marker string) (Status, bool) {
	switch marker {
	case " ", "":
		return StatusPending, marker == " "
	case ">":
		return StatusInProgress, true
	case "x":
		return StatusCompleted, true
	case "!":
		return StatusBlocked, true
	case "-":
		return StatusSkipped, true
	default:
		return StatusPending, false
	}
}

// Summary recomputes the per-status counts. Totals reflect line count,
// not unique ids: duplicate ids are retained.
func (d *Document) Summary() Summary {
	s := Summary{CurrentPhase: d.CurrentPhase}
	for _, item := range d.Items {
		switch item.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		case StatusBlocked:
			s.Blocked++
		case StatusSkipped:
			s.Skipped++
		}
	}
	s.Total = len(d.Items)
	if s.Total > 0 {
		s.Fraction = float64(s.Completed) / float64(s.Total)
	}
	return s
}

// Remaining counts items that still keep the loop alive.
func (d *Document) Remaining() int {
	n := 0
	for _, item := range d.Items {
		if !item.Status.Terminal() {
			n++
		}
	}
	return n
}

// Complete reports whether no pending or in-progress items remain.
func (d *Document) Complete() bool {
	return d.Remaining() == 0
}

// CurrentItem returns the first in-progress item in document order, or
// the first pending item when nothing is in progress. Nil when all
// items are terminal.
func (d *Document) CurrentItem() *Item {
	var firstPending *Item
	for i := range d.Items {
		switch d.Items[i].Status {
		case StatusInProgress:
			return &d.Items[i]
		case StatusPending:
			if firstPending == nil {
				firstPending = &d.Items[i]
			}
		}
	}
	return firstPending
}

// ItemByID returns the last item carrying the given id, or nil. Last
// seen wins so a later edit of a duplicated id shadows earlier lines.
func (d *Document) ItemByID(id string) *Item {
	for i := len(d.Items) - 1; i >= 0; i-- {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

// Filter returns the items matching any of the given statuses, in
// document order.
func (d *Document) Filter(statuses ...Status) []Item {
	var out []Item
	for _, item := range d.Items {
		for _, st := range statuses {
			if item.Status == st {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
