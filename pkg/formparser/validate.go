package formparser

import (
	"strings"

	"github.com/shapestone/shape-formparser/internal/scan"
)

const (
	contentTypeOctetStream   = "application/octet-stream"
	contentTypeURLEncoded    = "application/x-www-form-urlencoded"
	contentTypeURLEncodedAlt = "application/x-url-encoded"
	contentTypeMultipart     = "multipart/form-data"
)

// ValidateContentType checks that value's main type (before any ';'
// options) is one of the three encodings this package recognizes. It does
// not check that a multipart boundary option is present; NewCoordinator
// does that at construction time.
func ValidateContentType(value []byte) error {
	main, _ := scan.ParseOptions(value)
	switch main {
	case contentTypeOctetStream, contentTypeURLEncoded, contentTypeURLEncodedAlt, contentTypeMultipart:
		return nil
	default:
		return newFormParserError("unknown Content-Type: %q", strings.TrimSpace(string(value)))
	}
}
