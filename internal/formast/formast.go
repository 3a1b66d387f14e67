// Package formast converts a completed form parse into a shape-core AST
// node and back, the way the teacher's internal/parser + pkg/http
// convert.go/render.go trio does for HTTP requests/responses. It is an
// optional view on top of pkg/formparser.Result: nothing in the core
// parsing engine depends on it.
package formast

import (
	"fmt"
	"strconv"

	"github.com/shapestone/shape-core/pkg/ast"
)

var zeroPos = ast.Position{}

// FieldData is a plain-data copy of a parsed field, decoupled from
// pkg/formparser.Field so this package has no import-cycle dependency on
// the coordinator.
type FieldData struct {
	Name   string
	Value  string
	IsNull bool
}

// FileData is a plain-data copy of a parsed file's metadata. The sink's
// actual bytes are not carried through the AST; callers that need the
// content read it from Path (if spilled) or keep their own reference to the
// original *formparser.File.
type FileData struct {
	FieldName   string
	FileName    string
	ContentType string
	Size        int64
	InMemory    bool
	Path        string
}

// FormData is the summary of one parsed form: every field and file, in
// arrival order.
type FormData struct {
	Fields []FieldData
	Files  []FileData
}

// FormToNode converts a FormData to an AST ObjectNode of the shape:
//
//	{ "type": "form",
//	  "fields": [{"name":..., "value":..., "isNull":...}, ...],
//	  "files":  [{"fieldName":..., "fileName":..., "contentType":...,
//	              "size":..., "inMemory":..., "path":...}, ...] }
func FormToNode(form FormData) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":   ast.NewLiteralNode("form", zeroPos),
		"fields": fieldsToNode(form.Fields),
		"files":  filesToNode(form.Files),
	}
	return ast.NewObjectNode(props, zeroPos)
}

func fieldsToNode(fields []FieldData) ast.SchemaNode {
	elements := make([]ast.SchemaNode, len(fields))
	for i, f := range fields {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"name":   ast.NewLiteralNode(f.Name, zeroPos),
			"value":  ast.NewLiteralNode(f.Value, zeroPos),
			"isNull": ast.NewLiteralNode(f.IsNull, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

func filesToNode(files []FileData) ast.SchemaNode {
	elements := make([]ast.SchemaNode, len(files))
	for i, f := range files {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"fieldName":   ast.NewLiteralNode(f.FieldName, zeroPos),
			"fileName":    ast.NewLiteralNode(f.FileName, zeroPos),
			"contentType": ast.NewLiteralNode(f.ContentType, zeroPos),
			"size":        ast.NewLiteralNode(f.Size, zeroPos),
			"inMemory":    ast.NewLiteralNode(f.InMemory, zeroPos),
			"path":        ast.NewLiteralNode(f.Path, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

// NodeToForm converts an AST ObjectNode (as produced by FormToNode) back to
// a FormData.
func NodeToForm(node ast.SchemaNode) (FormData, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return FormData{}, fmt.Errorf("formast: NodeToForm: expected ObjectNode, got %T", node)
	}
	props := obj.Properties()

	var form FormData
	if v, ok := props["fields"]; ok {
		fields, err := nodeToFields(v)
		if err != nil {
			return FormData{}, err
		}
		form.Fields = fields
	}
	if v, ok := props["files"]; ok {
		files, err := nodeToFiles(v)
		if err != nil {
			return FormData{}, err
		}
		form.Files = files
	}
	return form, nil
}

func nodeToFields(node ast.SchemaNode) ([]FieldData, error) {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("formast: expected ArrayDataNode for fields, got %T", node)
	}
	elements := arr.Elements()
	fields := make([]FieldData, 0, len(elements))
	for _, elem := range elements {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		var f FieldData
		if v, ok := props["name"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.Name, _ = lit.Value().(string)
			}
		}
		if v, ok := props["value"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.Value, _ = lit.Value().(string)
			}
		}
		if v, ok := props["isNull"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.IsNull, _ = lit.Value().(bool)
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func nodeToFiles(node ast.SchemaNode) ([]FileData, error) {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("formast: expected ArrayDataNode for files, got %T", node)
	}
	elements := arr.Elements()
	files := make([]FileData, 0, len(elements))
	for _, elem := range elements {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		var f FileData
		if v, ok := props["fieldName"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.FieldName, _ = lit.Value().(string)
			}
		}
		if v, ok := props["fileName"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.FileName, _ = lit.Value().(string)
			}
		}
		if v, ok := props["contentType"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.ContentType, _ = lit.Value().(string)
			}
		}
		if v, ok := props["size"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.Size = literalToInt64(lit.Value())
			}
		}
		if v, ok := props["inMemory"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.InMemory, _ = lit.Value().(bool)
			}
		}
		if v, ok := props["path"]; ok {
			if lit, ok := v.(*ast.LiteralNode); ok {
				f.Path, _ = lit.Value().(string)
			}
		}
		files = append(files, f)
	}
	return files, nil
}

func literalToInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
