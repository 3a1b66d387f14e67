package scan

// QuotedPrintableSink receives decoded bytes from a QuotedPrintableDecoder.
type QuotedPrintableSink interface {
	OnDecodedData(buf []byte, start, end int)
}

// QuotedPrintableDecoder streams a quoted-printable content-transfer-encoding
// back to raw bytes. It caches at most the trailing 2 bytes of each Write:
// just enough to recognize a '=' that might start an escape split across
// calls ("=3" in one Write, "D" in the next) or a soft line break ("=\r\n").
type QuotedPrintableDecoder struct {
	sink  QuotedPrintableSink
	cache []byte // 0-2 bytes held back from the previous Write
}

// NewQuotedPrintableDecoder creates a decoder that forwards decoded bytes to sink.
func NewQuotedPrintableDecoder(sink QuotedPrintableSink) *QuotedPrintableDecoder {
	return &QuotedPrintableDecoder{sink: sink}
}

// Write feeds encoded bytes into the decoder.
func (d *QuotedPrintableDecoder) Write(buf []byte) (int, error) {
	data := buf
	if len(d.cache) > 0 {
		data = append(append([]byte(nil), d.cache...), buf...)
		d.cache = nil
	}

	// Hold back a trailing '=' and, if the last two bytes contain an '=',
	// hold back both: that covers a partial hex escape ("=3") and a soft
	// line break split right after its CR ("=\r" with the "\n" still to
	// come), so an escape split across Write calls is never decoded
	// against a partial tail. At most 2 bytes are ever held back.
	keep := 0
	if n := len(data); n >= 1 && data[n-1] == '=' {
		keep = 1
	} else if n := len(data); n >= 2 && data[n-2] == '=' {
		keep = 2
	}

	decodeEnd := len(data) - keep
	decoded, err := decodeQP(data[:decodeEnd])
	if err != nil {
		return len(buf), err
	}
	if len(decoded) > 0 {
		d.sink.OnDecodedData(decoded, 0, len(decoded))
	}
	if keep > 0 {
		d.cache = append(d.cache, data[decodeEnd:]...)
	}
	return len(buf), nil
}

// decodeQP decodes a complete quoted-printable buffer (no dangling escape at
// the end) in a single linear pass. "=\r\n" and "=\n" are soft line breaks
// and produce no output byte; "=XX" decodes to one byte; any other '='
// sequence is passed through literally rather than erroring, matching the
// lenient handling the rest of this package uses for malformed escapes.
func decodeQP(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '=' {
			out = append(out, c)
			continue
		}
		switch {
		case i+2 < len(data) && data[i+1] == CR && data[i+2] == LF:
			i += 2
		case i+1 < len(data) && data[i+1] == LF:
			i++
		case i+2 < len(data) && isHexDigit(data[i+1]) && isHexDigit(data[i+2]):
			out = append(out, hexVal(data[i+1])<<4|hexVal(data[i+2]))
			i += 2
		default:
			out = append(out, c)
		}
	}
	return out, nil
}

// Finalize decodes any residual cached bytes (a trailing bare '=', an '=X'
// that never got completed, or a held-back "=\n" soft break) and forwards
// the result to the sink. An incomplete escape at true end-of-stream is
// emitted as-is rather than treated as an error.
func (d *QuotedPrintableDecoder) Finalize() error {
	if len(d.cache) == 0 {
		return nil
	}
	residual, err := decodeQP(d.cache)
	d.cache = nil
	if err != nil {
		return err
	}
	if len(residual) > 0 {
		d.sink.OnDecodedData(residual, 0, len(residual))
	}
	return nil
}
