// Package backend implements the output formats a wiki can be published to.
//
// Every backend is a wikipub.Backend: it formats links and images while a
// page is parsed, then receives the parsed page and writes it below the
// configured output directory.
//
//	xhtml       XHTML 1.0 pages with a header, footer and navigation links
//	helpblocks  HelpBlocks .htd sources using _HREF link macros
//	pdf         one PDF per page, printed by headless Chrome
//
// Internal links resolve only to pages published in the same run. Image
// files are downloaded once per backend into a shared image directory.
package backend
