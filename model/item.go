package model

// Origin records which kind of input an item was built from. Items built
// from different origins expose identical observable behavior; the tag only
// exists so callers can branch on provenance (e.g. bytecode-backed
// codebases carry no documentation).
type Origin string

const (
	OriginSource    Origin = "source"
	OriginBytecode  Origin = "bytecode"
	OriginSignature Origin = "signature"
)

// Position identifies where an item was declared in its input. For
// signature-backed items File is the signature file and Line the line the
// declaration starts on; bytecode-backed items only carry the jar entry
// name.
type Position struct {
	File string
	Line int
}

func (p Position) IsZero() bool {
	return p.File == "" && p.Line == 0
}

// Item is the capability set shared by every model entity: modifiers,
// documentation, the hidden/removed/deprecated flags and provenance.
type Item interface {
	// Codebase returns the codebase that owns this item.
	Codebase() *Codebase
	// Origin reports which backing the item was built from.
	Origin() Origin
	// Describe returns the qualified name or signature of the item,
	// suitable for error messages.
	Describe() string

	Modifiers() *Modifiers
	Position() Position

	// Documentation returns the raw doc comment, or "" if absent or the
	// backing has none.
	Documentation() string
	SetDocumentation(doc string) error

	Hidden() bool
	OriginallyHidden() bool
	SetHidden(hidden bool) error

	Removed() bool
	SetRemoved(removed bool) error

	Deprecated() bool
	OriginallyDeprecated() bool
	SetDeprecated(deprecated bool) error

	DocOnly() bool
	SetDocOnly(docOnly bool) error

	Synthetic() bool
}

// itemBase carries the Item state shared by all concrete entities. The
// name is fixed at construction time and doubles as the identifier in
// illegal-state errors.
type itemBase struct {
	codebase  *Codebase
	origin    Origin
	name      string
	position  Position
	modifiers Modifiers
	doc       string

	hidden           bool
	originallyHidden bool
	removed          bool
	deprecated       bool
	origDeprecated   bool
	docOnly          bool
	synthetic        bool
}

func newItemBase(cb *Codebase, name string) itemBase {
	b := itemBase{codebase: cb, name: name}
	if cb != nil {
		b.origin = cb.origin
	}
	return b
}

// initModifiers must be called after an itemBase has reached its final
// address (i.e. after embedding into a concrete item), so the modifiers
// point at the right base for freeze checks.
func (b *itemBase) initModifiers() {
	b.modifiers.item = b
}

func (b *itemBase) Codebase() *Codebase { return b.codebase }
func (b *itemBase) Origin() Origin      { return b.origin }
func (b *itemBase) Describe() string    { return b.name }
func (b *itemBase) Position() Position  { return b.position }

func (b *itemBase) Modifiers() *Modifiers { return &b.modifiers }

// checkMutable returns a FrozenError once the owning codebase has been
// frozen. All mutators funnel through here.
func (b *itemBase) checkMutable() error {
	if b.codebase != nil && b.codebase.frozen {
		return &FrozenError{Item: b.name, Codebase: b.codebase.description}
	}
	return nil
}

func (b *itemBase) Documentation() string { return b.doc }

func (b *itemBase) SetDocumentation(doc string) error {
	if b.codebase != nil && !b.codebase.SupportsDocumentation() {
		return &UnsupportedError{Op: "documentation", Codebase: b.codebase.description}
	}
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.doc = doc
	return nil
}

func (b *itemBase) Hidden() bool           { return b.hidden }
func (b *itemBase) OriginallyHidden() bool { return b.originallyHidden }

func (b *itemBase) SetHidden(hidden bool) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.hidden = hidden
	return nil
}

func (b *itemBase) Removed() bool { return b.removed }

func (b *itemBase) SetRemoved(removed bool) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.removed = removed
	return nil
}

func (b *itemBase) Deprecated() bool           { return b.deprecated }
func (b *itemBase) OriginallyDeprecated() bool { return b.origDeprecated }

func (b *itemBase) SetDeprecated(deprecated bool) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.deprecated = deprecated
	return nil
}

func (b *itemBase) DocOnly() bool { return b.docOnly }

func (b *itemBase) SetDocOnly(docOnly bool) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.docOnly = docOnly
	return nil
}

func (b *itemBase) Synthetic() bool { return b.synthetic }

// SetSynthetic marks compiler-generated items (bridges, synthetic
// accessors). Only bytecode builders see the flag on input.
func (b *itemBase) SetSynthetic(synthetic bool) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.synthetic = synthetic
	return nil
}

// MarkOriginallyHidden records the as-loaded hidden state. Called by
// builders only, before the codebase is handed to callers.
func (b *itemBase) MarkOriginallyHidden(hidden bool) {
	b.hidden = hidden
	b.originallyHidden = hidden
}

func (b *itemBase) MarkOriginallyDeprecated(deprecated bool) {
	b.deprecated = deprecated
	b.origDeprecated = deprecated
}

// SetPosition records where the item was declared. Builders call this once
// while constructing the item.
func (b *itemBase) SetPosition(pos Position) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	b.position = pos
	return nil
}
