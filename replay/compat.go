package replay

import "fmt"

// Build identifies the running engine a replay is played back on.
type Build struct {
	Protocol    int
	GameVersion string
	ModHashes   []int32
}

// Mismatch describes one difference between a recording and a Build.
type Mismatch struct {
	Field    string
	Recorded string
	Local    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: recorded %s, running %s", m.Field, m.Recorded, m.Local)
}

// CheckCompat compares the recording's build fields with local. Empty local
// fields are not checked.
func (i *Info) CheckCompat(local Build) []Mismatch {
	var out []Mismatch
	if local.Protocol != 0 && i.Protocol != local.Protocol {
		out = append(out, Mismatch{"protocol", fmt.Sprint(i.Protocol), fmt.Sprint(local.Protocol)})
	}
	if local.GameVersion != "" && i.GameVersion != local.GameVersion {
		out = append(out, Mismatch{"gameVersion", i.GameVersion, local.GameVersion})
	}
	if local.ModHashes != nil && !equalHashes(i.ModAssemblyHashes, local.ModHashes) {
		out = append(out, Mismatch{
			"modAssemblyHashes",
			fmt.Sprintf("%d mods", len(i.ModAssemblyHashes)),
			fmt.Sprintf("%d mods", len(local.ModHashes)),
		})
	}
	return out
}

func equalHashes(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// IncompatibleError wraps ErrIncompatible with the mismatches found.
type IncompatibleError struct {
	Mismatches []Mismatch
}

func (e *IncompatibleError) Error() string {
	msg := ErrIncompatible.Error()
	for _, m := range e.Mismatches {
		msg += "; " + m.String()
	}
	return msg
}

func (e *IncompatibleError) Unwrap() error { return ErrIncompatible }
