package scan

import (
	"encoding/base64"
	"testing"
)

type recordingDecodeSink struct {
	data []byte
}

func (s *recordingDecodeSink) OnDecodedData(buf []byte, start, end int) {
	s.data = append(s.data, buf[start:end]...)
}

func decodeBase64Chunks(t *testing.T, encoded string, chunkSize int) ([]byte, error) {
	t.Helper()
	sink := &recordingDecodeSink{}
	d := NewBase64Decoder(sink)

	data := []byte(encoded)
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := d.Write(data[i:end]); err != nil {
			return sink.data, err
		}
	}
	if err := d.Finalize(); err != nil {
		return sink.data, err
	}
	return sink.data, nil
}

func TestBase64Decoder_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"ab",
		"abc",
		"hello world",
		"The quick brown fox jumps over the lazy dog, 0123456789!",
	}

	for _, want := range inputs {
		encoded := base64.StdEncoding.EncodeToString([]byte(want))
		for _, chunkSize := range []int{1, 2, 3, 4, 7, 1024} {
			got, err := decodeBase64Chunks(t, encoded, chunkSize)
			if err != nil {
				t.Fatalf("input %q chunk %d: decode error: %v", want, chunkSize, err)
			}
			if string(got) != want {
				t.Errorf("input %q chunk %d: got %q, want %q", want, chunkSize, got, want)
			}
		}
	}
}

func TestBase64Decoder_EmbeddedWhitespaceAndNewlines(t *testing.T) {
	want := "the quick brown fox"
	encoded := base64.StdEncoding.EncodeToString([]byte(want))

	// Wrap at 4-char boundaries like a line-wrapped MIME body.
	var wrapped []byte
	for i := 0; i < len(encoded); i += 4 {
		end := i + 4
		if end > len(encoded) {
			end = len(encoded)
		}
		wrapped = append(wrapped, encoded[i:end]...)
		wrapped = append(wrapped, '\r', '\n')
	}

	got, err := decodeBase64Chunks(t, string(wrapped), 5)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBase64Decoder_InvalidByte(t *testing.T) {
	sink := &recordingDecodeSink{}
	d := NewBase64Decoder(sink)
	_, err := d.Write([]byte("ab%d"))
	if err == nil {
		t.Fatal("expected DecodeError, got nil")
	}
	if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
}

func TestBase64Decoder_TruncatedAtFinalize(t *testing.T) {
	sink := &recordingDecodeSink{}
	d := NewBase64Decoder(sink)
	if _, err := d.Write([]byte("abcde")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := d.Finalize(); err == nil {
		t.Fatal("expected DecodeError at Finalize, got nil")
	} else if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
}

func TestBase64Decoder_CompleteQuantaFinalizeClean(t *testing.T) {
	sink := &recordingDecodeSink{}
	d := NewBase64Decoder(sink)
	if _, err := d.Write([]byte("aGVsbG8=")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := d.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if string(sink.data) != "hello" {
		t.Errorf("data = %q, want hello", sink.data)
	}
}
