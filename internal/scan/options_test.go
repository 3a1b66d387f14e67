package scan

import "testing"

func TestParseOptions_NoOptions(t *testing.T) {
	main, opts := ParseOptions([]byte("multipart/form-data"))
	if main != "multipart/form-data" {
		t.Errorf("main = %q", main)
	}
	if len(opts) != 0 {
		t.Errorf("opts = %+v, want empty", opts)
	}
}

func TestParseOptions_BoundaryAndName(t *testing.T) {
	main, opts := ParseOptions([]byte(`multipart/form-data; boundary=----WebKitFormBoundaryX`))
	if main != "multipart/form-data" {
		t.Errorf("main = %q", main)
	}
	if opts["boundary"] != "----WebKitFormBoundaryX" {
		t.Errorf("boundary = %q", opts["boundary"])
	}
}

func TestParseOptions_QuotedValueWithEscapes(t *testing.T) {
	main, opts := ParseOptions([]byte(`form-data; name="field1"; filename="quote \" and backslash \\ here.txt"`))
	if main != "form-data" {
		t.Errorf("main = %q", main)
	}
	if opts["name"] != "field1" {
		t.Errorf("name = %q", opts["name"])
	}
	want := `quote " and backslash \ here.txt`
	if opts["filename"] != want {
		t.Errorf("filename = %q, want %q", opts["filename"], want)
	}
}

func TestParseOptions_QuotedValueWithEmbeddedSemicolon(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; name="a;b"; extra=1`))
	if opts["name"] != "a;b" {
		t.Errorf("name = %q, want a;b", opts["name"])
	}
	if opts["extra"] != "1" {
		t.Errorf("extra = %q, want 1", opts["extra"])
	}
}

func TestParseOptions_CaseInsensitiveMainAndKeys(t *testing.T) {
	main, opts := ParseOptions([]byte(`Multipart/Form-Data; Boundary=ABC`))
	if main != "multipart/form-data" {
		t.Errorf("main = %q", main)
	}
	if opts["boundary"] != "ABC" {
		t.Errorf("boundary = %q", opts["boundary"])
	}
}

func TestParseOptions_IE6DriveLetterPath(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; name="upload"; filename="C:\path\to\file.txt"`))
	if opts["filename"] != "file.txt" {
		t.Errorf("filename = %q, want file.txt", opts["filename"])
	}
}

func TestParseOptions_IE6UNCPath(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; name="upload"; filename="\\\\server\\share\\file.txt"`))
	if opts["filename"] != "file.txt" {
		t.Errorf("filename = %q, want file.txt", opts["filename"])
	}
}

func TestParseOptions_UnixPathIsNotStripped(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; name="upload"; filename="/tmp/file.txt"`))
	if opts["filename"] != "/tmp/file.txt" {
		t.Errorf("filename = %q, want /tmp/file.txt (not an IE6 path)", opts["filename"])
	}
}

func TestParseOptions_ExtendedFilenameOverridesPlain(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; name="upload"; filename="fallback.txt"; filename*=utf-8''%e2%82%ac%20rates.txt`))
	want := "\u20ac rates.txt"
	if opts["filename"] != want {
		t.Errorf("filename = %q, want %q", opts["filename"], want)
	}
}

func TestParseOptions_ExtendedFilenameWithoutCharsetLang(t *testing.T) {
	_, opts := ParseOptions([]byte(`form-data; filename*=just%20text`))
	if opts["filename"] != "just text" {
		t.Errorf("filename = %q, want 'just text'", opts["filename"])
	}
}

func TestParseOptions_MalformedTailIsDropped(t *testing.T) {
	main, opts := ParseOptions([]byte(`form-data; name="a"; ===`))
	if main != "form-data" {
		t.Errorf("main = %q", main)
	}
	if opts["name"] != "a" {
		t.Errorf("name = %q, want a", opts["name"])
	}
}

func TestParseOptions_EmptyValue(t *testing.T) {
	main, opts := ParseOptions(nil)
	if main != "" {
		t.Errorf("main = %q, want empty", main)
	}
	if len(opts) != 0 {
		t.Errorf("opts = %+v, want empty", opts)
	}
}
