package fieldpath

// Builder builds paths in a chain-safe way. Every call returns a new Builder,
// so intermediate builders can be shared.
//
//	p := fieldpath.Root().Field("items").Index(2).Field("price").Path()
type Builder struct {
	parts Path
}

// Root returns a Builder positioned at the root value.
func Root() Builder { return Builder{parts: Path{}} }

// From returns a Builder positioned at p.
func From(p Path) Builder { return Builder{parts: p.Clone()} }

// Field appends a key segment. An empty name leaves the builder unchanged.
func (b Builder) Field(name string) Builder {
	if name == "" {
		return b
	}
	return Builder{parts: b.parts.Append(Key(name))}
}

// Index appends an index segment.
func (b Builder) Index(i int) Builder {
	return Builder{parts: b.parts.Append(Index(i))}
}

// Path returns the built path. The result does not share storage with b.
func (b Builder) Path() Path {
	if b.parts == nil {
		return Path{}
	}
	return b.parts.Clone()
}

// String renders the built path.
func (b Builder) String() string { return Render(b.parts) }
