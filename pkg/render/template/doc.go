// Package template defines the template renderer contract used to produce
// printable documents. The gotemplate subpackage provides the pongo2 engine.
package template
