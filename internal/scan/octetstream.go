package scan

// OctetStreamHandler receives events from an OctetStreamParser.
type OctetStreamHandler interface {
	OnStart()
	OnData(buf []byte, start, end int)
	OnEnd()
}

// OctetStreamParser is the trivial parser for application/octet-stream
// bodies: it forwards bytes through untouched, firing start once, data for
// every write, and end on Finalize, while enforcing a size cap.
type OctetStreamParser struct {
	handler OctetStreamHandler
	maxSize int64
	written int64
	started bool
}

// NewOctetStreamParser creates a parser that reports at most maxSize bytes
// to handler. A maxSize <= 0 means unlimited.
func NewOctetStreamParser(handler OctetStreamHandler, maxSize int64) *OctetStreamParser {
	return &OctetStreamParser{handler: handler, maxSize: maxSize}
}

// Write processes buf and returns the number of bytes actually accepted,
// which is less than len(buf) only when the size cap has been reached.
func (p *OctetStreamParser) Write(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	if !p.started {
		p.started = true
		p.handler.OnStart()
	}

	n := len(buf)
	if p.maxSize > 0 {
		remaining := p.maxSize - p.written
		if remaining <= 0 {
			return 0
		}
		if int64(n) > remaining {
			n = int(remaining)
		}
	}

	p.written += int64(n)
	if n > 0 {
		p.handler.OnData(buf, 0, n)
	}
	return n
}

// Finalize fires the end event. Safe to call even if no bytes were written.
func (p *OctetStreamParser) Finalize() {
	p.handler.OnEnd()
}
