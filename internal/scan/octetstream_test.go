package scan

import "testing"

type recordingOctetHandler struct {
	started bool
	data    []byte
	ended   bool
}

func (h *recordingOctetHandler) OnStart()                          { h.started = true }
func (h *recordingOctetHandler) OnData(buf []byte, start, end int) { h.data = append(h.data, buf[start:end]...) }
func (h *recordingOctetHandler) OnEnd()                            { h.ended = true }

func TestOctetStreamParser_Basic(t *testing.T) {
	h := &recordingOctetHandler{}
	p := NewOctetStreamParser(h, 0)

	n := p.Write([]byte("hello"))
	if n != 5 {
		t.Fatalf("Write() = %d, want 5", n)
	}
	p.Finalize()

	if !h.started {
		t.Error("OnStart was not called")
	}
	if string(h.data) != "hello" {
		t.Errorf("data = %q, want hello", h.data)
	}
	if !h.ended {
		t.Error("OnEnd was not called")
	}
}

func TestOctetStreamParser_EmptyWriteDoesNotStart(t *testing.T) {
	h := &recordingOctetHandler{}
	p := NewOctetStreamParser(h, 0)

	p.Write(nil)
	if h.started {
		t.Error("OnStart fired on empty write")
	}
}

func TestOctetStreamParser_SizeCap(t *testing.T) {
	h := &recordingOctetHandler{}
	p := NewOctetStreamParser(h, 3)

	n := p.Write([]byte("hello"))
	if n != 3 {
		t.Fatalf("Write() = %d, want 3", n)
	}
	if string(h.data) != "hel" {
		t.Errorf("data = %q, want hel", h.data)
	}

	n = p.Write([]byte("more"))
	if n != 0 {
		t.Fatalf("Write() after cap = %d, want 0", n)
	}
}

func TestOctetStreamParser_MultipleWrites(t *testing.T) {
	h := &recordingOctetHandler{}
	p := NewOctetStreamParser(h, 0)

	for _, chunk := range []string{"ab", "", "cd", "e"} {
		p.Write([]byte(chunk))
	}
	p.Finalize()

	if string(h.data) != "abcde" {
		t.Errorf("data = %q, want abcde", h.data)
	}
}
