// Package model defines the DOM-less form model the controllers operate on.
// A Form mirrors a form element: its controls (one per field descriptor),
// the labels bound to them, its buttons and the declarative flags that opt
// the form into validation and autosave (`needs-validation`,
// `data-autosave`). Field values are a closed variant (text, boolean, file
// reference) so the rule that file content never reaches a Draft is enforced
// by the types rather than by callers.
package model
