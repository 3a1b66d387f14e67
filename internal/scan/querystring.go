package scan

import "bytes"

// QuerystringHandler receives events from a QuerystringParser.
type QuerystringHandler interface {
	OnFieldStart()
	OnFieldName(buf []byte, start, end int)
	OnFieldData(buf []byte, start, end int)
	OnFieldEnd()
	OnEnd()
}

type qsState int

const (
	qsBeforeField qsState = iota
	qsFieldName
	qsFieldData
)

// QuerystringParser is the 3-state machine decoding '&'/';'-separated
// name=value pairs (application/x-www-form-urlencoded). It does not
// percent-decode; that is the caller's responsibility.
type QuerystringParser struct {
	handler  QuerystringHandler
	strict   bool
	maxSize  int64
	written  int64
	state    qsState
	sepSeen  bool
}

// NewQuerystringParser creates a querystring parser. In strict mode, a
// doubled separator or a field with no '=' raises a ParseError; in lax mode
// these are silently tolerated. The parser does not log them.
func NewQuerystringParser(handler QuerystringHandler, strict bool, maxSize int64) *QuerystringParser {
	return &QuerystringParser{handler: handler, strict: strict, maxSize: maxSize, state: qsBeforeField}
}

// Write feeds data into the parser and returns the number of bytes accepted
// (see Write on OctetStreamParser for the truncation contract) and any
// ParseError encountered in strict mode.
func (p *QuerystringParser) Write(data []byte) (int, error) {
	length := len(data)
	if p.maxSize > 0 {
		remaining := p.maxSize - p.written
		if remaining <= 0 {
			return 0, nil
		}
		if int64(length) > remaining {
			length = int(remaining)
		}
	}

	n, err := p.write(data, length)
	p.written += int64(n)
	return n, err
}

func (p *QuerystringParser) write(data []byte, length int) (int, error) {
	i := 0
	for i < length {
		switch p.state {
		case qsBeforeField:
			c := data[i]
			if c == ampersand || c == semicolon {
				if p.sepSeen {
					if p.strict {
						return i, newParseError(i, "duplicate separator")
					}
				} else {
					p.sepSeen = true
				}
				i++
				continue
			}
			p.handler.OnFieldStart()
			p.sepSeen = false
			p.state = qsFieldName
			// reprocess this byte under the new state

		case qsFieldName:
			sepPos := nextSeparator(data, i, length)
			var eqPos int
			if sepPos >= 0 {
				eqPos = indexByteRange(data, equals, i, sepPos)
			} else {
				eqPos = indexByteRange(data, equals, i, length)
			}

			if eqPos >= 0 {
				p.handler.OnFieldName(data, i, eqPos)
				i = eqPos + 1 // the value starts after the '='
				p.state = qsFieldData
				continue
			}

			if sepPos >= 0 {
				if p.strict {
					return i, newParseError(i, "missing '=' in field starting at %d", i)
				}
				p.handler.OnFieldName(data, i, sepPos)
				p.handler.OnFieldEnd()
				i = sepPos
				p.state = qsBeforeField
				continue
			}

			p.handler.OnFieldName(data, i, length)
			i = length

		case qsFieldData:
			sepPos := nextSeparator(data, i, length)
			if sepPos >= 0 {
				p.handler.OnFieldData(data, i, sepPos)
				p.handler.OnFieldEnd()
				i = sepPos
				p.state = qsBeforeField
				continue
			}
			p.handler.OnFieldData(data, i, length)
			i = length
		}
	}
	return length, nil
}

// nextSeparator finds the nearest '&' or ';' at or after from, within
// [from, limit). '&' wins if both are present, per spec.
func nextSeparator(data []byte, from, limit int) int {
	amp := indexByteRange(data, ampersand, from, limit)
	if amp >= 0 {
		return amp
	}
	return indexByteRange(data, semicolon, from, limit)
}

func indexByteRange(data []byte, b byte, from, limit int) int {
	idx := bytes.IndexByte(data[from:limit], b)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// Finalize flushes a field in progress in FIELD_DATA and fires end. A field
// still in FIELD_NAME (it never saw '=') gets no field_end here; the caller
// detects it via State() and reports it as a null-valued field.
func (p *QuerystringParser) Finalize() {
	if p.state == qsFieldData {
		p.handler.OnFieldEnd()
	}
	p.handler.OnEnd()
}

// State reports whether the parser is mid-field-name with no terminating
// separator seen yet. The coordinator uses this at Finalize to recognize a
// trailing bare name (e.g. "...&blank" at end of input) as a field whose
// value is null, since the parser itself only emits field_end from
// FIELD_DATA or from a separator seen while still in FIELD_NAME.
func (p *QuerystringParser) State() string {
	switch p.state {
	case qsFieldName:
		return "field_name"
	case qsFieldData:
		return "field_data"
	default:
		return "before_field"
	}
}
