// Package mediawiki reads pages and image files from a MediaWiki site over
// HTTP. Pages come from Special:Export; image locations come from the
// external editor endpoint, which avoids any database access.
package mediawiki
