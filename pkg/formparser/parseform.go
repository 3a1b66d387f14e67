package formparser

import "io"

// Result summarizes a completed ParseForm call: every field and file
// encountered, in arrival order, alongside any files already closed by the
// caller's Visitor (ParseForm itself never closes a File — ownership
// transfers to the visitor the moment on_file fires).
type Result struct {
	Fields []*Field
	Files  []*File
}

// collectingVisitor wraps an optional user Visitor and additionally
// accumulates everything it sees into a Result, so ParseForm callers who
// don't need streaming callbacks can just inspect the returned Result.
type collectingVisitor struct {
	inner  Visitor
	result Result
}

func (v *collectingVisitor) OnField(f *Field) {
	v.result.Fields = append(v.result.Fields, f)
	if v.inner != nil {
		v.inner.OnField(f)
	}
}

func (v *collectingVisitor) OnFile(f *File) {
	v.result.Files = append(v.result.Files, f)
	if v.inner != nil {
		v.inner.OnFile(f)
	}
}

func (v *collectingVisitor) OnEnd() {
	if v.inner != nil {
		v.inner.OnEnd()
	}
}

// ParseForm reads r in chunks of the configured chunk size (default 1 MiB,
// see WithChunkSize) until EOF or contentLength bytes have been read
// (whichever comes first), feeding each chunk to a Coordinator built from
// contentType, and returns every field and file produced.
//
// visitor may be nil; pass a non-nil Visitor to also receive streaming
// callbacks as parsing proceeds, same as the low-level Coordinator.
//
// Adapted from the chunk-pull read loop in the teacher's Decoder.readBody:
// this is the read-until-EOF-or-Content-Length shape, generalized from a
// single buffered read to a caller-sized chunk loop because the coordinator
// (unlike the teacher's Decoder) is a pure sink that must not see the whole
// body materialized at once.
func ParseForm(r io.Reader, contentType []byte, contentLength int64, visitor Visitor, opts ...Option) (*Result, error) {
	cv := &collectingVisitor{inner: visitor}

	hdrs := Headers{ContentType: contentType, ContentLength: contentLength}
	coord, err := NewCoordinator(hdrs, cv, opts...)
	if err != nil {
		return nil, err
	}

	chunkSize := coord.cfg.chunkSize
	buf := make([]byte, chunkSize)

	var totalRead int64
	for {
		if contentLength >= 0 && totalRead >= contentLength {
			break
		}

		want := len(buf)
		if contentLength >= 0 {
			if remaining := contentLength - totalRead; remaining < int64(want) {
				want = int(remaining)
			}
		}

		n, readErr := r.Read(buf[:want])
		if n > 0 {
			totalRead += int64(n)
			if _, werr := coord.Write(buf[:n]); werr != nil {
				return &cv.result, werr
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &cv.result, readErr
		}
	}

	if err := coord.Finalize(); err != nil {
		return &cv.result, err
	}
	return &cv.result, nil
}
