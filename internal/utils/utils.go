package utils

import (
	"crypto/md5"
	"net/url"
	"strings"
)

// ComputeChecksum takes a byte slice and returns the raw MD5 checksum as a byte slice
func ComputeChecksum(content []byte) []byte {
	hash := md5.New()
	hash.Write(content)
	return hash.Sum(nil)
}

// URIToDocumentID normalizes a document URI into the stable identifier
// used as the history map key. file:// URIs become plain paths; anything
// unparseable is returned as-is so an odd client cannot break recording.
func URIToDocumentID(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	if parsed.Scheme == "file" {
		return parsed.Path
	}
	return strings.TrimPrefix(uri, parsed.Scheme+"://")
}
