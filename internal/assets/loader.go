package assets

// AssetLoader loads stylesheets and page templates by name.
type AssetLoader interface {
	// LoadStyle loads a stylesheet by name, without the .css extension.
	// Returns ErrStyleNotFound if it does not exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a page template by name, without the .html
	// extension. Returns ErrTemplateNotFound if it does not exist.
	LoadTemplate(name string) (string, error)
}
