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

package dep

// AttrKey represents an attribute key that may be applied to a Type.
//
// Its specific values are an implementation detail of this package;
// only use the named constants in client code.
type AttrKey int8

// The negative AttrKey values below are stored compactly in Type's
// backing attr.Set.Mask and have special handling in type.go.
const (
	// Build indicates the dependency is required only to build the
	// depending package (rez's build_requires), not to use it once built.
	Build AttrKey = -0x01

	// PrivateBuild indicates the dependency is required only to build
	// the depending package and does not propagate to anything that
	// depends on it in turn (rez's private_build_requires).
	PrivateBuild AttrKey = -0x02

	// Weak indicates a weak reference (`~pkg`): satisfied only if the
	// named package is already present in the resolve for some other
	// reason, never pulling it in on its own.
	Weak AttrKey = -0x04

	// Conflict indicates an ephemeral conflict marker (`!pkg`): the
	// named package, at the given range, must not appear in the
	// resolve at all.
	Conflict AttrKey = -0x08

	// -0x10 is reserved for future use.

	// Below here are AttrKey whose values are serialized rather than
	// represented as a flag bit.

	// VariantOverride indicates the requirement originates from a
	// Variant's overriding_requires rather than the package's base
	// requires list; its value names the variant index it came from.
	VariantOverride AttrKey = 1

	// Source records the name of the package version that introduced
	// this requirement, for conflict diagnostics (spec.md's
	// ConflictRecord.sources).
	Source AttrKey = 2
)

func (k AttrKey) String() string {
	switch k {
	case Build:
		return "build"
	case PrivateBuild:
		return "private_build"
	case Weak:
		return "weak"
	case Conflict:
		return "conflict"
	case VariantOverride:
		return "variant_override"
	case Source:
		return "source"
	default:
		return "unknown"
	}
}
