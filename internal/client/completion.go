// internal/client/completion.go
package client

import "math"

// Completion is a derived view of how filled-in a profile is. It is
// recomputed from the current record on every call and never cached.
type Completion struct {
	Percent int
	Missing []string
}

// completionFields pairs each required field's display name with its
// presence check, in display order.
var completionFields = []struct {
	name    string
	present func(UserRecord) bool
}{
	{"Name", func(u UserRecord) bool { return u.Name != "" }},
	{"Bio", func(u UserRecord) bool { return u.Bio != "" }},
	{"Phone", func(u UserRecord) bool { return u.Phone != "" }},
	{"Location", func(u UserRecord) bool { return u.Location != "" }},
}

// ComputeCompletion reports the percentage of required profile fields
// that are non-empty, plus the display names of the missing ones.
func ComputeCompletion(u UserRecord) Completion {
	present := 0
	missing := []string{}
	for _, f := range completionFields {
		if f.present(u) {
			present++
		} else {
			missing = append(missing, f.name)
		}
	}

	percent := int(math.Round(100 * float64(present) / float64(len(completionFields))))
	return Completion{Percent: percent, Missing: missing}
}
