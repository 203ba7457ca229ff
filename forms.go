package erpforms

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-erpforms/pkg/formspec"
	"github.com/goliatone/go-erpforms/pkg/model"
)

// LoadForm builds the built-in form called nameOrPath ("admission",
// "bonafide"), or the form declared in the YAML, JSON or TOML file at that
// path.
func LoadForm(nameOrPath string) (*model.Form, error) {
	def, err := formspec.Resolve(nameOrPath)
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// LoadOpenAPIForm builds a form from the request body of operationID in the
// OpenAPI document at path.
func LoadOpenAPIForm(ctx context.Context, path, operationID string) (*model.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erpforms: read openapi document: %w", err)
	}
	def, err := formspec.FromOpenAPI(ctx, data, operationID)
	if err != nil {
		return nil, err
	}
	return def.Build()
}
