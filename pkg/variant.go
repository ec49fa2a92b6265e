package pkg

import (
	"fmt"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/version"
)

// Variant is a Package projected along one axis of its Variants list:
// the tuple (package_identity, variant_index, overriding_requires).
// It is what the resolver actually selects — a candidate package with
// zero variants is treated as implicitly having exactly one, empty
// variant (index 0, no overriding requires).
type Variant struct {
	PackageName    string
	PackageVersion version.Version
	Versionless    bool
	Index          int

	// OverridingRequires are additional requirements specific to this
	// variant, tagged dep.VariantOverride so diagnostics can trace them
	// back to the variant that introduced them.
	OverridingRequires []dep.Requirement
}

// VariantsOf projects p's declared Variants (raw requirement-lists)
// into resolver-selectable Variant tuples, defaulting to a single
// implicit empty variant when p declares none.
func VariantsOf(p *Package) []Variant {
	if len(p.Variants) == 0 {
		return []Variant{{
			PackageName:    p.Name,
			PackageVersion: p.Version,
			Versionless:    p.Versionless,
			Index:          0,
		}}
	}
	out := make([]Variant, len(p.Variants))
	for i, reqs := range p.Variants {
		tagged := make([]dep.Requirement, len(reqs))
		for j, r := range reqs {
			if !r.Type.HasAttr(dep.VariantOverride) {
				r.Type.AddAttr(dep.VariantOverride, fmt.Sprint(i))
			}
			tagged[j] = r
		}
		out[i] = Variant{
			PackageName:        p.Name,
			PackageVersion:     p.Version,
			Versionless:        p.Versionless,
			Index:              i,
			OverridingRequires: tagged,
		}
	}
	return out
}

func (v Variant) Identity() string {
	if v.Versionless {
		return fmt.Sprintf("%s-(empty)[%d]", v.PackageName, v.Index)
	}
	return fmt.Sprintf("%s-%s[%d]", v.PackageName, v.PackageVersion, v.Index)
}
