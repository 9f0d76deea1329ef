// Package apilevels aggregates successive API snapshots into a per-element
// version history and renders it as api-versions XML or JSON.
package apilevels

// ApiElement is the version history of one API element: the level it
// appeared in, the level it was deprecated in, and the last level it was
// still present in. Levels are positive integers assigned by the caller,
// oldest snapshot first.
type ApiElement struct {
	name string

	since         int
	deprecatedIn  int // 0 = never deprecated
	lastPresentIn int

	// sinceExtension is the first extension SDK version the element
	// appeared in; 0 when it never shipped through an extension.
	sinceExtension int
	sdks           string
	mainlineModule string
}

func newElement(name string, version int, deprecated bool) *ApiElement {
	e := &ApiElement{name: name}
	e.Update(version, deprecated)
	return e
}

func (e *ApiElement) Name() string        { return e.name }
func (e *ApiElement) Since() int          { return e.since }
func (e *ApiElement) DeprecatedIn() int   { return e.deprecatedIn }
func (e *ApiElement) LastPresentIn() int  { return e.lastPresentIn }
func (e *ApiElement) SinceExtension() int { return e.sinceExtension }
func (e *ApiElement) Sdks() string        { return e.sdks }
func (e *ApiElement) MainlineModule() string {
	return e.mainlineModule
}

// Update records that the element exists at the given level. Snapshots
// are applied oldest to newest; an element seen without deprecation after
// being seen deprecated counts as un-deprecated again.
func (e *ApiElement) Update(version int, deprecated bool) {
	if e.since == 0 || version < e.since {
		e.since = version
	}
	if version > e.lastPresentIn {
		e.lastPresentIn = version
	}
	if deprecated {
		if e.deprecatedIn == 0 || version < e.deprecatedIn {
			e.deprecatedIn = version
		}
	} else if version > e.deprecatedIn {
		e.deprecatedIn = 0
	}
}

// UpdateExtension records the first extension SDK version carrying the
// element.
func (e *ApiElement) UpdateExtension(version int) {
	if e.sinceExtension == 0 || version < e.sinceExtension {
		e.sinceExtension = version
	}
}

// UpdateSdks sets the computed sdks attribute ("ext-id:version" pairs).
func (e *ApiElement) UpdateSdks(sdks string) { e.sdks = sdks }

// UpdateMainlineModule records the mainline module that ships the
// element. The first module wins; elements never move between modules.
func (e *ApiElement) UpdateMainlineModule(module string) {
	if e.mainlineModule == "" {
		e.mainlineModule = module
	}
}

// introducedNotLaterThan reports whether e appeared at the same level as
// other or earlier, the condition under which an inherited duplicate of e
// carries no extra information.
func (e *ApiElement) introducedNotLaterThan(other *ApiElement) bool {
	return e.since <= other.since
}

func (e *ApiElement) clone() *ApiElement {
	copied := *e
	return &copied
}
