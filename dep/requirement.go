package dep

import (
	"fmt"
	"strings"

	"github.com/rez-project/rez/version"
)

// Requirement is a PackageRequirement: a package name plus an
// optional VersionRange, annotated with a Type describing how the
// requirement should be treated during resolution (regular, build-only,
// weak, or an ephemeral conflict marker).
type Requirement struct {
	Name  string
	Range version.Range // IsAny() when the requirement string had no range
	Type  Type
}

// SatisfiedBy reports whether v satisfies this requirement:
// req.SatisfiedBy(v) ⇔ req.Range.Contains(v) (absent range ⇒ any version).
func (r Requirement) SatisfiedBy(v version.Version) bool {
	return r.Range.Contains(v)
}

// IsWeak reports whether this is a weak reference (`~pkg`): it is only
// satisfied if pkg is already present in the resolve for some other
// reason and never pulls pkg in on its own.
func (r Requirement) IsWeak() bool { return r.Type.HasAttr(Weak) }

// IsConflict reports whether this is an ephemeral conflict marker
// (`!pkg`): the named package, at this range, must not appear in the
// resolve at all.
func (r Requirement) IsConflict() bool { return r.Type.HasAttr(Conflict) }

// ParseRequirement parses a rez requirement string of the form
// "name", "name-range", "~name-range" (weak), or "!name-range"
// (conflict marker). The separator between name and range is '-';
// since package names and range expressions may themselves contain
// '-', the split point is the first '-' whose remainder parses as a
// valid range, scanning from the left.
func ParseRequirement(s string) (Requirement, error) {
	raw := s
	var t Type
	switch {
	case strings.HasPrefix(s, "~"):
		t.AddAttr(Weak, "")
		s = s[1:]
	case strings.HasPrefix(s, "!"):
		t.AddAttr(Conflict, "")
		s = s[1:]
	}
	if s == "" {
		return Requirement{}, fmt.Errorf("dep: %q has no package name", raw)
	}

	name, rng, err := splitNameRange(s)
	if err != nil {
		return Requirement{}, fmt.Errorf("dep: %q: %w", raw, err)
	}
	return Requirement{Name: name, Range: rng, Type: t}, nil
}

func splitNameRange(s string) (name string, rng version.Range, err error) {
	idx := strings.IndexByte(s, '-')
	if idx < 0 {
		return s, version.Any(), nil
	}
	for i := idx; i >= 0 && i < len(s); {
		candidate := s[i+1:]
		if r, err := version.ParseRange(candidate); err == nil {
			return s[:i], r, nil
		}
		next := strings.IndexByte(s[i+1:], '-')
		if next < 0 {
			break
		}
		i = i + 1 + next
	}
	return s, version.Any(), nil
}

func (r Requirement) String() string {
	prefix := ""
	switch {
	case r.IsWeak():
		prefix = "~"
	case r.IsConflict():
		prefix = "!"
	}
	if r.Range.IsAny() {
		return prefix + r.Name
	}
	return fmt.Sprintf("%s%s-%s", prefix, r.Name, r.Range)
}
