package assets

// Built-in asset names.
const (
	DefaultStyleName = "default" // screen stylesheet for XHTML output
	PrintStyleName   = "print"   // stylesheet for PDF output
	HeaderTemplate   = "header"
	FooterTemplate   = "footer"
)
