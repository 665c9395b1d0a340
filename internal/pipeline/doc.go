// Package pipeline implements the pure text stages of the wiki markup parser.
//
// Each stage maps text to text and runs in a fixed order driven by the root
// wikipub package:
//   - Line ending normalization
//   - Horizontal rules (----)
//   - Headings and section markers, section stripping
//   - Bold and italic apostrophe runs
//   - Pipe tables, with attribute sanitizing
//   - Lists, paragraphs and preformatted blocks
//
// Template expansion, magic variables and links need a page source or a
// renderer, so they live in the root package. Keeping them out of here means
// every stage in this package can be tested on plain strings.
package pipeline
