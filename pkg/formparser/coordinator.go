package formparser

import (
	"strings"

	"github.com/shapestone/shape-formparser/internal/scan"
)

// Headers carries the request headers the coordinator's dispatch depends
// on. Content-Type is required; Content-Length and X-File-Name are
// optional, matching spec.md's "Recognized request headers."
type Headers struct {
	ContentType   []byte
	ContentLength int64 // -1 if unknown
	XFileName     []byte
}

// Coordinator dispatches incoming body bytes to the parser selected by
// Content-Type and routes parser events to Field/File sinks and, finally,
// to the caller's Visitor.
type Coordinator struct {
	cfg     *Config
	visitor Visitor

	kind contentKind

	octet *scan.OctetStreamParser
	qs    *scan.QuerystringParser
	mp    *scan.MultipartParser

	// octet-stream
	octetFile *File

	// querystring
	qsNameBuf []byte
	qsField   *Field
	qsHasData bool

	// multipart, reset per part
	mpHeaders        map[string][]byte
	mpHeaderFieldBuf []byte
	mpHeaderValueBuf []byte
	mpField          *Field
	mpFile           *File
	mpWriter         partWriter

	err error
}

type contentKind int

const (
	kindOctetStream contentKind = iota
	kindQuerystring
	kindMultipart
)

// partWriter is the uniform write/finalize contract the decoder chain
// (identity / base64 / quoted-printable) delegates through to a Field or
// File, per spec.md §9 "File sink polymorphism."
type partWriter interface {
	Write(buf []byte) (int, error)
	Finalize() error
}

// fieldWriter adapts *Field to partWriter for the identity (no
// transfer-encoding) case.
type fieldWriter struct{ field *Field }

func (w fieldWriter) Write(buf []byte) (int, error) { w.field.Write(buf); return len(buf), nil }
func (w fieldWriter) Finalize() error               { w.field.Finalize(); return nil }

// fileWriter adapts *File to partWriter.
type fileWriter struct{ file *File }

func (w fileWriter) Write(buf []byte) (int, error) { return w.file.Write(buf) }
func (w fileWriter) Finalize() error                { return w.file.Finalize() }

// base64Writer decodes base64 before forwarding to an inner partWriter.
type base64Writer struct {
	dec   *scan.Base64Decoder
	inner partWriter
}

func newBase64Writer(inner partWriter) *base64Writer {
	w := &base64Writer{inner: inner}
	w.dec = scan.NewBase64Decoder(decodedDataSink{inner})
	return w
}

func (w *base64Writer) Write(buf []byte) (int, error) { return w.dec.Write(buf) }
func (w *base64Writer) Finalize() error {
	if err := w.dec.Finalize(); err != nil {
		return err
	}
	return w.inner.Finalize()
}

// qpWriter decodes quoted-printable before forwarding to an inner partWriter.
type qpWriter struct {
	dec   *scan.QuotedPrintableDecoder
	inner partWriter
}

func newQPWriter(inner partWriter) *qpWriter {
	w := &qpWriter{inner: inner}
	w.dec = scan.NewQuotedPrintableDecoder(decodedDataSink{inner})
	return w
}

func (w *qpWriter) Write(buf []byte) (int, error) { return w.dec.Write(buf) }
func (w *qpWriter) Finalize() error {
	if err := w.dec.Finalize(); err != nil {
		return err
	}
	return w.inner.Finalize()
}

// decodedDataSink adapts a partWriter to scan's {Base64,QuotedPrintable}Sink
// interfaces, which deliver decoded output as a (buf, start, end) slice
// rather than a plain []byte.
type decodedDataSink struct{ inner partWriter }

func (s decodedDataSink) OnDecodedData(buf []byte, start, end int) {
	_, _ = s.inner.Write(buf[start:end])
}

// NewCoordinator constructs a Coordinator for the given headers. For
// multipart, the Content-Type's boundary option must be present; its
// absence is a construction-time FormParserError, per spec.md §4.7.
func NewCoordinator(hdrs Headers, visitor Visitor, opts ...Option) (*Coordinator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	main, options := scan.ParseOptions(hdrs.ContentType)

	c := &Coordinator{cfg: cfg, visitor: visitor}

	switch main {
	case contentTypeOctetStream:
		c.kind = kindOctetStream
		c.octetFile = c.newFile(nil, hdrs.XFileName, nil)
		c.octet = scan.NewOctetStreamParser(octetHandler{c}, cfg.maxBodySize)

	case contentTypeURLEncoded, contentTypeURLEncodedAlt:
		c.kind = kindQuerystring
		c.qs = scan.NewQuerystringParser(qsHandlerAdapter{c}, cfg.strict, cfg.maxBodySize)

	case contentTypeMultipart:
		boundary, ok := options["boundary"]
		if !ok || boundary == "" {
			return nil, newFormParserError("No boundary given")
		}
		c.kind = kindMultipart
		c.mp = scan.NewMultipartParser(mpHandlerAdapter{c}, []byte(boundary), cfg.maxBodySize)

	default:
		return nil, newFormParserError("Unknown Content-Type: %q", string(hdrs.ContentType))
	}

	return c, nil
}

func (c *Coordinator) newFile(fieldName, fileName, contentType []byte) *File {
	return &File{
		fieldName:   fieldName,
		fileName:    fileName,
		contentType: contentType,
		sink:        newMemorySpillSink(c.cfg, fileName),
		inMemory:    true,
	}
}

// Write feeds body bytes into the selected parser. It returns the number of
// bytes accepted (see the scan package's size-cap truncation contract).
func (c *Coordinator) Write(data []byte) (int, error) {
	var n int
	var err error

	switch c.kind {
	case kindOctetStream:
		n = c.octet.Write(data)
	case kindQuerystring:
		n, err = c.qs.Write(data)
		if pe, ok := err.(*scan.ParseError); ok {
			err = &QuerystringParseError{ParseError: ParseError{FormParserError: FormParserError{Msg: pe.Msg}, Offset: pe.Offset}}
		}
	case kindMultipart:
		n, err = c.mp.Write(data)
		if pe, ok := err.(*scan.ParseError); ok {
			err = &MultipartParseError{ParseError: ParseError{FormParserError: FormParserError{Msg: pe.Msg}, Offset: pe.Offset}}
		}
	}

	if err == nil && c.err != nil {
		err = c.err
		c.err = nil
	}
	return n, err
}

// Finalize flushes any field/file in progress and invokes on_end.
func (c *Coordinator) Finalize() error {
	switch c.kind {
	case kindOctetStream:
		c.octet.Finalize()
	case kindQuerystring:
		// A trailing bare name (FIELD_NAME with no '=') is reported as a
		// null-valued field: the parser itself only flushes field_end from
		// FIELD_DATA, so the coordinator synthesizes it here.
		if c.qs.State() == "field_name" && len(c.qsNameBuf) > 0 {
			c.startQSFieldIfNeeded()
			c.qsField.SetNone()
			c.finishQSField()
		}
		c.qs.Finalize()
	case kindMultipart:
		c.mp.Finalize()
	}

	c.visitor.OnEnd()
	if c.err != nil {
		err := c.err
		c.err = nil
		return err
	}
	return nil
}

// ---- octet-stream handler ----

type octetHandler struct{ c *Coordinator }

func (h octetHandler) OnStart() {}

func (h octetHandler) OnData(buf []byte, start, end int) {
	if _, err := h.c.octetFile.Write(buf[start:end]); err != nil {
		h.c.err = err
	}
}

func (h octetHandler) OnEnd() {
	if err := h.c.octetFile.Finalize(); err != nil {
		h.c.err = err
		return
	}
	h.c.visitor.OnFile(h.c.octetFile)
}

// ---- querystring handler ----

type qsHandlerAdapter struct{ c *Coordinator }

func (h qsHandlerAdapter) OnFieldStart() {
	h.c.qsNameBuf = h.c.qsNameBuf[:0]
	h.c.qsField = nil
	h.c.qsHasData = false
}

func (h qsHandlerAdapter) OnFieldName(buf []byte, start, end int) {
	h.c.qsNameBuf = append(h.c.qsNameBuf, buf[start:end]...)
}

func (h qsHandlerAdapter) OnFieldData(buf []byte, start, end int) {
	h.c.startQSFieldIfNeeded()
	h.c.qsHasData = true
	h.c.qsField.Write(buf[start:end])
}

func (h qsHandlerAdapter) OnFieldEnd() {
	h.c.startQSFieldIfNeeded()
	if !h.c.qsHasData {
		h.c.qsField.SetNone()
	}
	h.c.finishQSField()
}

func (h qsHandlerAdapter) OnEnd() {}

func (c *Coordinator) startQSFieldIfNeeded() {
	if c.qsField == nil {
		name := append([]byte(nil), c.qsNameBuf...)
		c.qsField = NewField(name)
	}
}

func (c *Coordinator) finishQSField() {
	c.qsField.Finalize()
	c.visitor.OnField(c.qsField)
	c.qsField = nil
	c.qsNameBuf = c.qsNameBuf[:0]
	c.qsHasData = false
}

// ---- multipart handler ----

type mpHandlerAdapter struct{ c *Coordinator }

func (h mpHandlerAdapter) OnPartBegin() {
	c := h.c
	c.mpHeaders = map[string][]byte{}
	c.mpHeaderFieldBuf = nil
	c.mpHeaderValueBuf = nil
	c.mpField = nil
	c.mpFile = nil
	c.mpWriter = nil
}

func (h mpHandlerAdapter) OnHeaderField(buf []byte, start, end int) {
	h.c.mpHeaderFieldBuf = append(h.c.mpHeaderFieldBuf, buf[start:end]...)
}

func (h mpHandlerAdapter) OnHeaderValue(buf []byte, start, end int) {
	h.c.mpHeaderValueBuf = append(h.c.mpHeaderValueBuf, buf[start:end]...)
}

func (h mpHandlerAdapter) OnHeaderEnd() {
	c := h.c
	name := strings.ToLower(string(c.mpHeaderFieldBuf))
	value := append([]byte(nil), c.mpHeaderValueBuf...)
	c.mpHeaders[name] = value
	c.mpHeaderFieldBuf = c.mpHeaderFieldBuf[:0]
	c.mpHeaderValueBuf = c.mpHeaderValueBuf[:0]
}

func (h mpHandlerAdapter) OnHeadersFinished() {
	c := h.c

	_, dispOptions := scan.ParseOptions(c.mpHeaders["content-disposition"])
	fieldName := []byte(dispOptions["name"])

	var fileName []byte
	hasFileName := false
	if fn, ok := dispOptions["filename"]; ok {
		fileName = []byte(fn)
		hasFileName = true
	}

	var contentType []byte
	if ct, ok := c.mpHeaders["content-type"]; ok {
		main, _ := scan.ParseOptions(ct)
		contentType = []byte(main)
	}

	var inner partWriter
	if hasFileName {
		c.mpFile = c.newFile(fieldName, fileName, contentType)
		inner = fileWriter{c.mpFile}
	} else {
		c.mpField = NewField(fieldName)
		inner = fieldWriter{c.mpField}
	}

	rawCTE := strings.TrimSpace(string(c.mpHeaders["content-transfer-encoding"]))
	if rawCTE == "" {
		c.mpWriter = inner
		return
	}

	cte, recognized := scan.CanonicalTransferEncoding([]byte(rawCTE))
	if !recognized {
		if c.cfg.uploadErrorOnBadCTE {
			c.err = newFormParserError("unknown Content-Transfer-Encoding: %q", rawCTE)
			c.mpWriter = inner // keep a usable writer; the Write call in progress returns the stored error
			return
		}
		c.cfg.log("unknown content-transfer-encoding, treating as pass-through", "cte", rawCTE)
		c.mpWriter = inner
		return
	}

	switch cte {
	case "7bit", "8bit", "binary":
		c.mpWriter = inner
	case "base64":
		c.mpWriter = newBase64Writer(inner)
	case "quoted-printable":
		c.mpWriter = newQPWriter(inner)
	}
}

func (h mpHandlerAdapter) OnPartData(buf []byte, start, end int) {
	if h.c.mpWriter == nil {
		return
	}
	if _, err := h.c.mpWriter.Write(buf[start:end]); err != nil {
		h.c.err = err
	}
}

func (h mpHandlerAdapter) OnPartEnd() {
	c := h.c
	if c.mpWriter != nil {
		if err := c.mpWriter.Finalize(); err != nil {
			if de, ok := err.(*scan.DecodeError); ok {
				c.err = &DecodeError{FormParserError: FormParserError{Msg: de.Msg}}
			} else {
				c.err = err
			}
		}
	}

	switch {
	case c.mpFile != nil:
		c.visitor.OnFile(c.mpFile)
	case c.mpField != nil:
		c.visitor.OnField(c.mpField)
	}
}

func (h mpHandlerAdapter) OnEnd() {}
