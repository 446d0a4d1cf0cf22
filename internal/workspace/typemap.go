// Package workspace maps the human-readable workspace categories shown to
// guests onto the enum keys the booking authority stores.
package workspace

import "sort"

// typeMap is keyed by display name. Values are the backend enum keys.
var typeMap = map[string]string{
	"Shared Workspace":          "shared_workspace",
	"Private Office Suite":      "private_office_suite",
	"Team Collaboration Room":   "team_collaboration_room",
	"Executive Conference Room": "executive_conference_room",
	"Event & Seminar Hall":      "event_seminar_hall",
}

// ToEnum returns the backend enum key for a display name.  The second
// result is false when the display name is not a known category.
func ToEnum(display string) (string, bool) {
	v, ok := typeMap[display]
	return v, ok
}

// ToDisplay performs the reverse lookup.
func ToDisplay(enum string) (string, bool) {
	for k, v := range typeMap {
		if v == enum {
			return k, true
		}
	}
	return "", false
}

// DisplayNames lists every known category in alphabetical order.
func DisplayNames() []string {
	out := make([]string, 0, len(typeMap))
	for k := range typeMap {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
