// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package dep provides data structures for representing dependency edge
types: whether a requirement is regular, a build-only requirement, a
private build-only requirement, a weak reference, or an ephemeral
conflict marker, plus free-form attributes for diagnostics.
*/
package dep

import (
	"fmt"
	"strings"

	"github.com/rez-project/rez/internal/attr"
)

// Type indicates the kind of a dependency edge.
//
// The zero value of Type is a regular dependency. Attributes may be
// added to a Type to annotate it with extra details or restrictions.
type Type struct {
	set attr.Set
}

// NewType constructs a Type with the given attributes set.
// This is a convenience constructor for Types with value-less attributes.
func NewType(attrs ...AttrKey) Type {
	var t Type
	for _, a := range attrs {
		t.AddAttr(a, "")
	}
	return t
}

// Clone returns a clone of the given Type.
func (t *Type) Clone() Type {
	return Type{set: t.set.Clone()}
}

// AddAttr adds an attribute to the Type.
func (t *Type) AddAttr(key AttrKey, value string) {
	if key < 0 {
		t.set.Mask |= attr.Mask(-key)
		return
	}
	t.set.SetAttr(uint8(key), value)
}

// GetAttr gets an attribute from the Type.
func (t *Type) GetAttr(key AttrKey) (value string, ok bool) {
	if key < 0 {
		return "", t.set.Mask&attr.Mask(-key) != 0
	}
	return t.set.GetAttr(uint8(key))
}

// HasAttr reports whether the type has the given attribute.
// This is a convenience method when the key is used as a flag.
func (t *Type) HasAttr(key AttrKey) bool {
	_, ok := t.GetAttr(key)
	return ok
}

// IsRegular reports whether the Type is a regular, unattributed Type.
func (t Type) IsRegular() bool { return t.set.IsRegular() }

// IsBuildOnly reports whether the dependency only needs to be present
// at build time (build_requires or private_build_requires).
func (t Type) IsBuildOnly() bool {
	return t.HasAttr(Build) || t.HasAttr(PrivateBuild)
}

// Propagates reports whether this requirement should be re-asserted
// on anything that in turn depends on the owning package. Private
// build requirements never propagate; everything else does.
func (t Type) Propagates() bool { return !t.HasAttr(PrivateBuild) }

// Equal reports whether the Type is identical to other.
func (t Type) Equal(other Type) bool { return t.Compare(other) == 0 }

// Compare returns -1, 0 or 1 depending on whether the Type is ordered
// before, equal to or after the other Type.
func (t Type) Compare(other Type) int { return t.set.Compare(other.set) }

func (t Type) String() string {
	s := "reg"
	if t.set.Mask != 0 {
		var ss []string
		if t.set.Mask&attr.Mask(-Build) != 0 {
			ss = append(ss, "build")
		}
		if t.set.Mask&attr.Mask(-PrivateBuild) != 0 {
			ss = append(ss, "private_build")
		}
		if t.set.Mask&attr.Mask(-Weak) != 0 {
			ss = append(ss, "weak")
		}
		if t.set.Mask&attr.Mask(-Conflict) != 0 {
			ss = append(ss, "conflict")
		}
		s = strings.Join(ss, "|")
	}
	t.set.ForEachAttr(func(key uint8, value string) {
		k := AttrKey(key)
		s += fmt.Sprintf("|%s=%q", k, value)
	})
	return s
}
