package httpvalidator

import (
	"regexp"
	"strings"
)

// ContentTypeNotProvided is the cache-key class for requests without a
// usable Content-Type header.
const ContentTypeNotProvided = "not_provided"

var boundaryParam = regexp.MustCompile(`(?i);\s*boundary.*`)

// ContentType is a parsed Content-Type header.
type ContentType struct {
	// Raw is the header exactly as received.
	Raw string
	// WithoutBoundary is the lower-cased header with any multipart boundary
	// parameter removed.
	WithoutBoundary string
	// MediaType is the lower-cased type/subtype.
	MediaType string
	// Charset is the trimmed second parameter segment (e.g. "charset=utf-8"),
	// or empty when absent.
	Charset string
}

// ParseContentType parses a raw Content-Type header. It never fails: an empty
// or malformed header yields a ContentType whose Key is ContentTypeNotProvided.
func ParseContentType(raw string) ContentType {
	ct := ContentType{Raw: raw}
	withoutBoundary := strings.TrimSpace(strings.ToLower(boundaryParam.ReplaceAllString(raw, "")))
	if withoutBoundary == "" {
		return ct
	}
	segments := strings.Split(withoutBoundary, ";")
	mediaType := strings.TrimSpace(segments[0])
	if !validMediaType(mediaType) {
		return ct
	}
	ct.WithoutBoundary = withoutBoundary
	ct.MediaType = mediaType
	if len(segments) > 1 {
		ct.Charset = strings.TrimSpace(segments[1])
	}
	return ct
}

// Provided reports whether a well-formed header was present.
func (ct ContentType) Provided() bool {
	return ct.MediaType != ""
}

// Equivalents returns the header forms considered interchangeable with this
// one, most canonical first. It is empty when no header was provided.
func (ct ContentType) Equivalents() []string {
	if !ct.Provided() {
		return nil
	}
	if ct.Charset != "" {
		return []string{ct.MediaType, ct.MediaType + "; " + ct.Charset}
	}
	return []string{ct.WithoutBoundary, ct.MediaType + "; charset=utf-8"}
}

// Key returns the content-type class used in validator cache keys. Headers
// that differ only by an absent or utf-8 charset share a key; any other
// charset or parameter forms a distinct class.
func (ct ContentType) Key() string {
	if !ct.Provided() {
		return ContentTypeNotProvided
	}
	if ct.Charset == "" || isUTF8Charset(ct.Charset) {
		return ct.MediaType
	}
	return ct.MediaType + "; " + ct.Charset
}

// Matches reports whether the content map key declared in the document
// applies to this content type. Exact equivalents win over wildcards.
func (ct ContentType) Matches(declared string) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if !ct.Provided() {
		return false
	}
	for _, eq := range ct.Equivalents() {
		if declared == eq {
			return true
		}
	}
	declaredMedia := strings.TrimSpace(strings.Split(declared, ";")[0])
	return declaredMedia == ct.MediaType
}

// matchesWildcard reports whether a declared range such as "application/*"
// or "*/*" covers this content type.
func (ct ContentType) matchesWildcard(declared string) bool {
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if !ct.Provided() {
		return false
	}
	if declared == "*/*" {
		return true
	}
	prefix, ok := strings.CutSuffix(declared, "/*")
	return ok && strings.HasPrefix(ct.MediaType, prefix+"/")
}

// IsJSON reports whether the media type is JSON or a +json suffix type.
func (ct ContentType) IsJSON() bool {
	return ct.MediaType == "application/json" || strings.HasSuffix(ct.MediaType, "+json")
}

func isUTF8Charset(segment string) bool {
	name, value, ok := strings.Cut(segment, "=")
	if !ok || strings.TrimSpace(name) != "charset" {
		return false
	}
	value = strings.Trim(strings.TrimSpace(value), `"`)
	return value == "utf-8" || value == "utf8"
}

func validMediaType(mt string) bool {
	typ, sub, ok := strings.Cut(mt, "/")
	return ok && typ != "" && sub != "" && !strings.ContainsAny(mt, " \t,")
}
