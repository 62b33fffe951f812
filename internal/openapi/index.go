// Package openapi loads the navigator's OpenAPI document and indexes its
// operations for request validation and serving.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed navigator.yaml
var document []byte

// IndexedOperation holds a resolved OpenAPI operation.
type IndexedOperation struct {
	OperationID  string
	Method       string
	PathTemplate string
	Parameters   []*openapi3.Parameter
	RequestBody  *openapi3.RequestBody
}

// ValidationError describes a schema validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Index is an in-memory index of operations keyed by operationId.
type Index struct {
	doc        *openapi3.T
	rendered   []byte
	operations map[string]IndexedOperation
}

// Load parses and indexes the embedded document.
func Load() (*Index, error) {
	return LoadData(document)
}

// LoadData parses, validates and indexes an OpenAPI document.
func LoadData(data []byte) (*Index, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi: validating document: %w", err)
	}
	rendered, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: rendering document: %w", err)
	}

	idx := &Index{
		doc:        doc,
		rendered:   rendered,
		operations: make(map[string]IndexedOperation),
	}
	for path, pathItem := range doc.Paths.Map() {
		for method, op := range pathItem.Operations() {
			if op.OperationID == "" {
				continue
			}

			// Merge path-level and operation-level parameters.
			params := make([]*openapi3.Parameter, 0)
			for _, ref := range pathItem.Parameters {
				if ref.Value != nil {
					params = append(params, ref.Value)
				}
			}
			for _, ref := range op.Parameters {
				if ref.Value != nil {
					params = append(params, ref.Value)
				}
			}

			var reqBody *openapi3.RequestBody
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				reqBody = op.RequestBody.Value
			}

			idx.operations[op.OperationID] = IndexedOperation{
				OperationID:  op.OperationID,
				Method:       method,
				PathTemplate: path,
				Parameters:   params,
				RequestBody:  reqBody,
			}
		}
	}
	return idx, nil
}

// Document returns the parsed document.
func (idx *Index) Document() *openapi3.T {
	return idx.doc
}

// JSON returns the document rendered as JSON.
func (idx *Index) JSON() []byte {
	return idx.rendered
}

// GetOperation returns the indexed operation with the given ID.
func (idx *Index) GetOperation(operationID string) (IndexedOperation, bool) {
	op, ok := idx.operations[operationID]
	return op, ok
}

// AllOperationIDs returns every operation ID, sorted.
func (idx *Index) AllOperationIDs() []string {
	ids := make([]string, 0, len(idx.operations))
	for id := range idx.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateRequest checks a decoded JSON body against the operation's request
// schema: required fields must be present and present fields must match
// their property schema. Returns nil when the body is valid or the operation
// takes no body.
func (idx *Index) ValidateRequest(operationID string, body map[string]any) []ValidationError {
	op, ok := idx.operations[operationID]
	if !ok {
		return []ValidationError{{Message: fmt.Sprintf("operation %s not found", operationID)}}
	}
	if op.RequestBody == nil {
		return nil
	}

	ct := op.RequestBody.Content.Get("application/json")
	if ct == nil || ct.Schema == nil || ct.Schema.Value == nil {
		return nil
	}

	schema := ct.Schema.Value
	var errs []ValidationError

	for _, req := range schema.Required {
		if _, exists := body[req]; !exists {
			errs = append(errs, ValidationError{
				Field:   req,
				Message: fmt.Sprintf("%s is required", req),
			})
		}
	}

	fields := make([]string, 0, len(body))
	for name := range body {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		prop, ok := schema.Properties[name]
		if !ok || prop.Value == nil {
			continue
		}
		if err := prop.Value.VisitJSON(body[name]); err != nil {
			errs = append(errs, ValidationError{Field: name, Message: schemaReason(err)})
		}
	}
	return errs
}

func schemaReason(err error) string {
	var se *openapi3.SchemaError
	if errors.As(err, &se) && se.Reason != "" {
		return se.Reason
	}
	return err.Error()
}
