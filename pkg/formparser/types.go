// Package formparser parses HTTP request bodies carrying form data —
// application/octet-stream, application/x-www-form-urlencoded (and the
// legacy application/x-url-encoded alias), and multipart/form-data — without
// buffering the whole body in memory.
//
// The byte-level state machines live in internal/scan; this package wires
// them to Field/File sinks and the caller's Visitor.
package formparser

// valueKind tags a FieldValue as not yet written, explicitly null, or
// holding bytes. Distinguishing "never written" from "explicitly null"
// needs a third state beyond a nil-vs-non-nil []byte.
type valueKind int8

const (
	valueUnset valueKind = iota
	valueNull
	valueBytes
)

// FieldValue is the tagged-union representation of a Field's value.
type FieldValue struct {
	kind valueKind
	data []byte
}

// IsNull reports whether the value was explicitly set to null (a
// querystring field whose field_end arrived with no field data, such as a
// bare name with no '='). Multipart fields are never set to null.
func (v FieldValue) IsNull() bool { return v.kind == valueNull }

// Bytes returns the accumulated bytes, or nil if the value is unset or null.
func (v FieldValue) Bytes() []byte {
	if v.kind != valueBytes {
		return nil
	}
	return v.data
}

func (v FieldValue) String() string { return string(v.Bytes()) }

// Equal reports whether two FieldValues carry the same kind and bytes.
func (v FieldValue) Equal(other FieldValue) bool {
	if v.kind != other.kind {
		return false
	}
	return string(v.data) == string(other.data)
}

// Field represents a form field name and accumulated value.
//
// After Finalize, no further writes are accepted. Two Fields are equal iff
// their names and values are equal.
type Field struct {
	name      []byte
	value     FieldValue
	finalized bool
}

// NewField creates an empty Field with the given name.
func NewField(name []byte) *Field {
	return &Field{name: name}
}

// Name returns the field's name bytes.
func (f *Field) Name() []byte { return f.name }

// Value returns the field's accumulated value.
func (f *Field) Value() FieldValue { return f.value }

// Write appends data to the field's value, switching an unset value to a
// present one. It is a no-op (silently ignored) once Finalize has run.
func (f *Field) Write(buf []byte) {
	if f.finalized {
		return
	}
	if f.value.kind != valueBytes {
		f.value = FieldValue{kind: valueBytes}
	}
	f.value.data = append(f.value.data, buf...)
}

// SetNone overrides any accumulated value with the null sentinel. The
// querystring path uses it when a field ends with no field data (such as a
// bare name with no '='); RenderForm uses it to restore a null field.
func (f *Field) SetNone() {
	if f.finalized {
		return
	}
	f.value = FieldValue{kind: valueNull}
}

// Finalize marks the field as complete; further Write/SetNone calls are
// ignored.
func (f *Field) Finalize() { f.finalized = true }

// Finalized reports whether Finalize has run.
func (f *Field) Finalized() bool { return f.finalized }

// Equal reports whether two fields have equal names and values.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return string(f.name) == string(other.name) && f.value.Equal(other.value)
}

// File represents an uploaded file being assembled from a multipart or
// octet-stream body.
//
// The in-memory flag transitions true→false exactly once, never back, at
// the moment bytesWritten crosses the configured spill threshold.
type File struct {
	fieldName   []byte
	fileName    []byte
	contentType []byte

	sink         Sink
	bytesWritten int64
	inMemory     bool
	path         string // empty while in memory
	finalized    bool
}

// FieldName returns the declared form field name this file arrived under.
func (f *File) FieldName() []byte { return f.fieldName }

// FileName returns the declared filename, or nil if none was sent.
func (f *File) FileName() []byte { return f.fileName }

// ContentType returns the declared Content-Type of the part, or nil.
func (f *File) ContentType() []byte { return f.contentType }

// BytesWritten returns the number of bytes successfully written to the sink.
func (f *File) BytesWritten() int64 { return f.bytesWritten }

// InMemory reports whether the file's contents still live in memory.
func (f *File) InMemory() bool { return f.inMemory }

// Path returns the on-disk path once spilled, or "" while in memory.
func (f *File) Path() string { return f.path }

// Write appends data to the file's sink, spilling to disk first if this
// write would cross the configured memory threshold.
func (f *File) Write(buf []byte) (int, error) {
	if f.finalized {
		return 0, nil
	}
	n, err := f.sink.Write(buf)
	f.bytesWritten += int64(n)
	if spiller, ok := f.sink.(spillTracker); ok {
		f.inMemory = spiller.InMemory()
		f.path = spiller.Path()
	}
	return n, err
}

// Finalize flushes and marks the file complete.
func (f *File) Finalize() error {
	if f.finalized {
		return nil
	}
	f.finalized = true
	return f.sink.Flush()
}

// Close releases the file's underlying resource (an on-disk temp file, if
// any). Ownership transfers to the caller the moment on_file is invoked;
// the coordinator never writes to a File after that point.
func (f *File) Close() error {
	if f.sink == nil {
		return nil
	}
	return f.sink.Close()
}
