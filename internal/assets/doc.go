// Package assets provides the stylesheets and header/footer templates used
// by the output backends.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and templates (go:embed)
//	    ├── FilesystemLoader  - user assets from a directory
//	    └── AssetResolver     - custom first, embedded as fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # e.g. default.css, print.css
//	└── templates/
//	    └── {name}.html     # header.html, footer.html
//
// Templates are plain text with {TOPIC}, {PREV_PAGE}, {PREV_PAGE_TITLE},
// {NEXT_PAGE} and {NEXT_PAGE_TITLE} placeholders, filled per page by the
// backends.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
