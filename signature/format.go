// Package signature reads and writes the versioned textual signature file
// format for API surfaces.
package signature

import (
	"fmt"
	"strings"
)

// Version is a signature format major version. Five incompatible dialects
// exist historically; all are read, exactly one is written per emit.
type Version int

const (
	Version1 Version = 1
	Version2 Version = 2
	Version3 Version = 3
	Version4 Version = 4
	Version5 Version = 5

	// VersionLatest is the newest dialect; VersionRecommended is the
	// dialect new surfaces should use.
	VersionLatest      = Version5
	VersionRecommended = Version2
)

func (v Version) String() string {
	return fmt.Sprintf("%d.0", int(v))
}

// ParseVersion accepts "2", "2.0" and the named aliases.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "latest":
		return VersionLatest, nil
	case "recommended":
		return VersionRecommended, nil
	case "1", "1.0":
		return Version1, nil
	case "2", "2.0":
		return Version2, nil
	case "3", "3.0":
		return Version3, nil
	case "4", "4.0":
		return Version4, nil
	case "5", "5.0":
		return Version5, nil
	}
	return 0, fmt.Errorf("unknown signature format version %q", s)
}

// OverloadedMethodOrder selects the textual emission order for methods
// sharing a name. It never affects comparison order.
type OverloadedMethodOrder string

const (
	// OrderSignature sorts overloads by their parameter signature.
	OrderSignature OverloadedMethodOrder = "signature"
	// OrderSource preserves the declaration order of the input.
	OrderSource OverloadedMethodOrder = "source"
)

// FileFormat is a format version plus its toggleable properties. Zero
// value is not usable; obtain one via Defaults or ParseSpecifier.
type FileFormat struct {
	Version Version

	KotlinStyleNulls       bool
	ConciseDefaultValues   bool
	OverloadedMethodOrder  OverloadedMethodOrder
	AddAdditionalOverrides bool
	SortWholeExtendsList   bool

	// Migrating is a free-text marker recorded while a surface is being
	// migrated to a customized format. Legality is gated by the caller
	// through SpecifierOptions.
	Migrating string
}

// Defaults returns the property set implied by a bare version.
func Defaults(v Version) FileFormat {
	f := FileFormat{Version: v, OverloadedMethodOrder: OrderSignature}
	switch {
	case v >= Version3:
		f.KotlinStyleNulls = true
	}
	if v >= Version4 {
		f.ConciseDefaultValues = true
	}
	if v >= Version5 {
		f.AddAdditionalOverrides = true
	}
	return f
}

// SpecifierOptions is the caller's policy for format specifiers.
type SpecifierOptions struct {
	// AllowMigrating permits (and, for customized 2.0, requires) the
	// migrating property.
	AllowMigrating bool
}

// ParseSpecifier parses a command-line format specifier of the shape
// "<version>[:<prop>=<val>[,<prop>=<val>]*]".
//
// Version 2.0 predates format properties, so customizing it is only legal
// mid-migration: with AllowMigrating set, customized 2.0 must carry a
// migrating property; without it, migrating must be absent.
func ParseSpecifier(spec string, opts SpecifierOptions) (FileFormat, error) {
	versionPart := spec
	propsPart := ""
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		versionPart = spec[:i]
		propsPart = spec[i+1:]
	}

	version, err := ParseVersion(versionPart)
	if err != nil {
		return FileFormat{}, fmt.Errorf("invalid format specifier %q: %w", spec, err)
	}
	f := Defaults(version)
	if propsPart == "" {
		return f, nil
	}

	customized := false
	for _, assignment := range strings.Split(propsPart, ",") {
		name, value, found := strings.Cut(assignment, "=")
		if !found {
			return FileFormat{}, fmt.Errorf("invalid format specifier %q: expected <name>=<value>, found %q", spec, assignment)
		}
		structural, err := f.applyProperty(strings.TrimSpace(name), strings.TrimSpace(value))
		if err != nil {
			return FileFormat{}, fmt.Errorf("invalid format specifier %q: %w", spec, err)
		}
		customized = customized || structural
	}

	if f.Migrating != "" && !opts.AllowMigrating {
		return FileFormat{}, fmt.Errorf("invalid format specifier %q: migrating is not allowed here", spec)
	}
	if customized && f.Version == Version2 && f.Migrating == "" {
		return FileFormat{}, fmt.Errorf("invalid format specifier %q: customizing format 2.0 requires the migrating property", spec)
	}
	if customized && f.Version < Version2 {
		return FileFormat{}, fmt.Errorf("invalid format specifier %q: format %s does not support properties", spec, f.Version)
	}
	return f, nil
}

// applyProperty sets one named property. The property name set is closed;
// anything else is an error. The returned flag reports whether the
// property changes the emitted structure (migrating does not).
func (f *FileFormat) applyProperty(name, value string) (bool, error) {
	switch name {
	case "kotlin-style-nulls":
		b, err := yesNo(name, value)
		if err != nil {
			return false, err
		}
		f.KotlinStyleNulls = b
	case "concise-default-values":
		b, err := yesNo(name, value)
		if err != nil {
			return false, err
		}
		f.ConciseDefaultValues = b
	case "overloaded-method-order":
		switch OverloadedMethodOrder(value) {
		case OrderSource, OrderSignature:
			f.OverloadedMethodOrder = OverloadedMethodOrder(value)
		default:
			return false, fmt.Errorf("unexpected value for property %s: %q (expected source or signature)", name, value)
		}
	case "add-additional-overrides":
		b, err := yesNo(name, value)
		if err != nil {
			return false, err
		}
		f.AddAdditionalOverrides = b
	case "sort-whole-extends-list":
		b, err := yesNo(name, value)
		if err != nil {
			return false, err
		}
		f.SortWholeExtendsList = b
	case "migrating":
		if value == "" {
			return false, fmt.Errorf("property migrating requires a non-empty value")
		}
		f.Migrating = value
		return false, nil
	default:
		return false, fmt.Errorf("unknown format property %q", name)
	}
	return true, nil
}

func yesNo(name, value string) (bool, error) {
	switch value {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("unexpected value for property %s: %q (expected yes or no)", name, value)
}

// Header renders the leading comment lines of a signature file: the
// version line plus one property line per deviation from the version's
// defaults.
func (f FileFormat) Header() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Signature format: %s\n", f.Version)
	defaults := Defaults(f.Version)
	writeProp := func(name, value, defaultValue string) {
		if value != defaultValue {
			fmt.Fprintf(&sb, "// - %s=%s\n", name, value)
		}
	}
	writeProp("kotlin-style-nulls", yn(f.KotlinStyleNulls), yn(defaults.KotlinStyleNulls))
	writeProp("concise-default-values", yn(f.ConciseDefaultValues), yn(defaults.ConciseDefaultValues))
	writeProp("overloaded-method-order", string(f.OverloadedMethodOrder), string(defaults.OverloadedMethodOrder))
	writeProp("add-additional-overrides", yn(f.AddAdditionalOverrides), yn(defaults.AddAdditionalOverrides))
	writeProp("sort-whole-extends-list", yn(f.SortWholeExtendsList), yn(defaults.SortWholeExtendsList))
	writeProp("migrating", f.Migrating, "")
	return sb.String()
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
