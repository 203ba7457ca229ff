package formspec

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	labels "github.com/goliatone/go-erpforms/internal/model"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/validation"
)

// widgetExtension lets a schema property pick its control kind explicitly.
const widgetExtension = "x-erpforms-widget"

// textareaThreshold turns long free-text properties into textareas.
const textareaThreshold = 200

// requestMediaTypes are tried in order when reading a request body.
var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// OpenAPIOption configures FromOpenAPI.
type OpenAPIOption func(*openAPIOptions)

type openAPIOptions struct {
	labeler           func(string) string
	allowExternalRefs bool
}

// WithOpenAPILabeler overrides how labels are derived from property names
// that carry no title.
func WithOpenAPILabeler(labeler func(string) string) OpenAPIOption {
	return func(opts *openAPIOptions) {
		if labeler != nil {
			opts.labeler = labeler
		}
	}
}

// WithExternalRefs allows the loader to follow external $refs.
func WithExternalRefs(allow bool) OpenAPIOption {
	return func(opts *openAPIOptions) {
		opts.allowExternalRefs = allow
	}
}

// FromOpenAPI derives a form definition from the request body of the
// operation with operationID. Properties become fields in name order.
func FromOpenAPI(ctx context.Context, data []byte, operationID string, options ...OpenAPIOption) (Definition, error) {
	opts := openAPIOptions{labeler: labels.DefaultLabeler}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}
	if len(data) == 0 {
		return Definition{}, errors.New("formspec: openapi document is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.allowExternalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Definition{}, fmt.Errorf("formspec: load openapi document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return Definition{}, fmt.Errorf("formspec: operation %q not found", operationID)
	}
	schema := requestSchema(op)
	if schema == nil {
		return Definition{}, fmt.Errorf("formspec: operation %q has no request body schema", operationID)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	def := Definition{
		ID:              operationID,
		Title:           op.Summary,
		AutosaveID:      operationID,
		NeedsValidation: true,
	}
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		def.Fields = append(def.Fields, fieldFromSchema(name, ref.Value, required[name], opts.labeler))
	}
	def.Buttons = []model.Button{{Name: "submit", Kind: model.ButtonSubmit}}
	return def, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		item := doc.Paths.Value(p)
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{item.Post, item.Put, item.Patch} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, src *openapi3.Schema, required bool, labeler func(string) string) model.FieldDescriptor {
	desc := model.FieldDescriptor{
		Name:     name,
		Kind:     kindFromSchema(src),
		Required: required,
		Pattern:  src.Pattern,
		Label:    strings.TrimSpace(src.Title),
	}
	if desc.Label == "" {
		desc.Label = labeler(name)
	}
	if desc.Pattern == "" {
		switch src.Format {
		case "mobile", "phone":
			desc.Pattern = validation.PatternMobile
		case "aadhaar", "national-id":
			desc.Pattern = validation.PatternNationalID
		}
	}
	if desc.Kind == model.FieldKindNumber {
		if src.Min != nil {
			desc.Min = strconv.FormatFloat(*src.Min, 'f', -1, 64)
		}
		if src.Max != nil {
			desc.Max = strconv.FormatFloat(*src.Max, 'f', -1, 64)
		}
	}
	if desc.Kind.HasOptions() {
		for _, value := range src.Enum {
			text := fmt.Sprint(value)
			desc.Options = append(desc.Options, model.Option{Value: text, Label: labeler(text)})
		}
	}
	return desc
}

func kindFromSchema(src *openapi3.Schema) model.FieldKind {
	if widget, ok := src.Extensions[widgetExtension].(string); ok {
		return model.ParseFieldKind(widget)
	}
	switch {
	case src.Type.Is(openapi3.TypeBoolean):
		return model.FieldKindCheckbox
	case len(src.Enum) > 0:
		return model.FieldKindSelect
	case src.Type.Is(openapi3.TypeInteger), src.Type.Is(openapi3.TypeNumber):
		return model.FieldKindNumber
	}
	switch src.Format {
	case "date":
		return model.FieldKindDate
	case "email":
		return model.FieldKindEmail
	case "binary", "byte":
		return model.FieldKindFile
	case "mobile", "phone", "tel":
		return model.FieldKindTel
	}
	if src.MaxLength != nil && *src.MaxLength > textareaThreshold {
		return model.FieldKindTextarea
	}
	return model.FieldKindText
}
