package epub

// Meta is the subset of the package metadata the dump-meta command prints.
type Meta struct {
	Title      string `json:"title"`
	Creator    string `json:"creator,omitempty"`
	Language   string `json:"language,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Pages      int    `json:"pages"`
}

func (b *Book) Meta() (Meta, error) {
	// goreader never fills Metadata.Identifier, so it comes from the OPF.
	pkg, err := b.packageDoc()
	if err != nil {
		return Meta{}, err
	}
	md := b.root.Metadata
	return Meta{
		Title:      md.Title,
		Creator:    md.Creator,
		Language:   md.Language,
		Publisher:  md.Publisher,
		Identifier: pkg.identifier(),
		Pages:      len(b.Pages()),
	}, nil
}
