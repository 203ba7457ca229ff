package model

import "strings"

// ValueKind tags the FieldValue variant.
type ValueKind uint8

const (
	ValueText ValueKind = iota
	ValueBool
	ValueFile
)

// FileDescriptor describes a selected file. Content is transient and is never
// serialised.
type FileDescriptor struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
	Content  []byte `json:"-"`
}

// IsImage reports whether the declared MIME type is an image type.
func (f *FileDescriptor) IsImage() bool {
	return f != nil && strings.HasPrefix(strings.ToLower(f.MIMEType), "image/")
}

// FieldValue is the closed variant held by a control: text, boolean (checkbox
// state) or a file reference. Build values through TextValue, BoolValue and
// FileValue.
type FieldValue struct {
	Kind    ValueKind
	Text    string
	Checked bool
	File    *FileDescriptor
}

// TextValue wraps a text value. Radio and select controls hold the selected
// option value as text.
func TextValue(text string) FieldValue {
	return FieldValue{Kind: ValueText, Text: text}
}

// BoolValue wraps a checkbox state.
func BoolValue(checked bool) FieldValue {
	return FieldValue{Kind: ValueBool, Checked: checked}
}

// FileValue wraps a file selection. A nil file means nothing is selected.
func FileValue(file *FileDescriptor) FieldValue {
	return FieldValue{Kind: ValueFile, File: file}
}

// IsEmpty reports whether the value counts as missing for required checks.
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case ValueBool:
		return !v.Checked
	case ValueFile:
		return v.File == nil
	default:
		return v.Text == ""
	}
}

// Raw returns the string a validator sees for this value. Files report their
// name; unchecked booleans report the empty string.
func (v FieldValue) Raw(checkedValue string) string {
	switch v.Kind {
	case ValueBool:
		if v.Checked {
			return checkedValue
		}
		return ""
	case ValueFile:
		if v.File == nil {
			return ""
		}
		return v.File.Name
	default:
		return v.Text
	}
}

// draftText is the only path from a value into a Draft. The file variant has
// no encoding, so file content cannot be persisted.
func (v FieldValue) draftText(checkedValue string) (string, bool) {
	switch v.Kind {
	case ValueText:
		return v.Text, true
	case ValueBool:
		if !v.Checked {
			return "", false
		}
		return checkedValue, true
	default:
		return "", false
	}
}
