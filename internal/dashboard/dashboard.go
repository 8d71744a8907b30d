package dashboard

import (
	"strings"
	"sync"
	"time"

	"github.com/teamideas/idea-portal/internal/backend"
)

// FallbackGroup collects ideas whose department is blank or missing. It is
// also the group opened by default on the reviewer dashboard.
const FallbackGroup = "Uncategorized"

// Group is one department bucket on the reviewer dashboard. Ideas keep the
// order the idea service returned them in.
type Group struct {
	Name  string               `json:"name"`
	Ideas []backend.IdeaRecord `json:"ideas"`
	Open  bool                 `json:"open"`
}

// GroupByDepartment buckets records by department name, first-seen order.
// Blank department names land in the fallback bucket.
func GroupByDepartment(records []backend.IdeaRecord) []Group {
	byName := make(map[string]int)

	var groups []Group
	for _, rec := range records {
		name := strings.TrimSpace(rec.DepartmentName)
		if name == "" {
			name = FallbackGroup
		}

		idx, ok := byName[name]
		if !ok {
			idx = len(groups)
			byName[name] = idx
			groups = append(groups, Group{Name: name})
		}
		groups[idx].Ideas = append(groups[idx].Ideas, rec)
	}

	return groups
}

// StatusClass maps an idea's review status to its visual class. Matching is
// case-insensitive; anything unrecognized renders as pending.
func StatusClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return "approved"
	case "rejected":
		return "rejected"
	default:
		return "pending"
	}
}

// FormatDate renders a service timestamp for display. Unparseable values
// pass through untouched rather than hiding the record.
func FormatDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}

// ExpansionState tracks which dashboard groups each session has open. State
// is per session and memory-only; a restart collapses everything back to the
// default.
type ExpansionState struct {
	mu   sync.Mutex
	open map[string]map[string]bool
}

func NewExpansionState() *ExpansionState {
	return &ExpansionState{open: make(map[string]map[string]bool)}
}

// sessionOpen returns the session's open-group set, seeding the fallback
// group open on first touch. Callers must hold e.mu.
func (e *ExpansionState) sessionOpen(sessionKey string) map[string]bool {
	set, ok := e.open[sessionKey]
	if !ok {
		set = map[string]bool{FallbackGroup: true}
		e.open[sessionKey] = set
	}
	return set
}

// IsOpen reports whether the session has the named group expanded.
func (e *ExpansionState) IsOpen(sessionKey, group string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionOpen(sessionKey)[group]
}

// Toggle flips one group's expansion and reports the new state. Toggling
// twice restores the starting state.
func (e *ExpansionState) Toggle(sessionKey, group string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	set := e.sessionOpen(sessionKey)
	set[group] = !set[group]
	return set[group]
}

// Apply stamps the session's expansion state onto a grouped listing.
func (e *ExpansionState) Apply(sessionKey string, groups []Group) []Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	set := e.sessionOpen(sessionKey)
	for i := range groups {
		groups[i].Open = set[groups[i].Name]
	}
	return groups
}

// Drop discards a session's expansion state, used on logout.
func (e *ExpansionState) Drop(sessionKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.open, sessionKey)
}
