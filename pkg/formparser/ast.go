package formparser

import (
	"fmt"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-formparser/internal/formast"
)

// ParseFormAST parses like ParseForm but returns the result as a shape-core
// AST node instead of a *Result, the way the teacher's Parse/ParseReader
// return an AST node instead of a *Request/*Response. Not required by this
// package's core parsing contract; it exists to give the shape-core
// dependency a concrete home beyond the teacher's original HTTP-message use.
func ParseFormAST(r io.Reader, contentType []byte, contentLength int64, opts ...Option) (ast.SchemaNode, error) {
	result, err := ParseForm(r, contentType, contentLength, nil, opts...)
	if err != nil {
		return nil, err
	}
	return formast.FormToNode(resultToFormData(result)), nil
}

// RenderForm converts an AST node (as produced by ParseFormAST) back to a
// *Result, the inverse of ParseFormAST. Files recovered this way carry only
// their metadata (size, path, content type); their sink is not
// reconstructed, since the AST never carried the underlying bytes.
func RenderForm(node ast.SchemaNode) (*Result, error) {
	data, err := formast.NodeToForm(node)
	if err != nil {
		return nil, fmt.Errorf("formparser: RenderForm: %w", err)
	}
	return formDataToResult(data), nil
}

func resultToFormData(r *Result) formast.FormData {
	var data formast.FormData
	for _, f := range r.Fields {
		data.Fields = append(data.Fields, formast.FieldData{
			Name:   string(f.Name()),
			Value:  f.Value().String(),
			IsNull: f.Value().IsNull(),
		})
	}
	for _, f := range r.Files {
		data.Files = append(data.Files, formast.FileData{
			FieldName:   string(f.FieldName()),
			FileName:    string(f.FileName()),
			ContentType: string(f.ContentType()),
			Size:        f.BytesWritten(),
			InMemory:    f.InMemory(),
			Path:        f.Path(),
		})
	}
	return data
}

func formDataToResult(data formast.FormData) *Result {
	result := &Result{}
	for _, fd := range data.Fields {
		f := NewField([]byte(fd.Name))
		if fd.IsNull {
			f.SetNone()
		} else {
			f.Write([]byte(fd.Value))
		}
		f.Finalize()
		result.Fields = append(result.Fields, f)
	}
	for _, fd := range data.Files {
		f := &File{
			fieldName:    []byte(fd.FieldName),
			fileName:     []byte(fd.FileName),
			contentType:  []byte(fd.ContentType),
			bytesWritten: fd.Size,
			inMemory:     fd.InMemory,
			path:         fd.Path,
			finalized:    true,
		}
		result.Files = append(result.Files, f)
	}
	return result
}
