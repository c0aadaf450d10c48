package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashing. The version suffix enables
// future algorithm migration without colliding with existing hashes.
const (
	DomainContent   = "specledger/content/v1"
	DomainCriterion = "specledger/criterion/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash computes the content hash used for conflict detection.
// Merge baseline comparison and ContentHasChanged both rely on this
// being the single hash function for document content.
func ContentHash(content string) string {
	return hashWithDomain(DomainContent, []byte(content))
}

// CriterionHash computes the identity hash of one acceptance-criteria
// item. The text is trimmed and NFC-normalized first so that visually
// identical criteria hash equally across versions; any other change to
// the text is a new criterion.
func CriterionHash(text string) string {
	normalized := norm.NFC.String(strings.TrimSpace(text))
	return hashWithDomain(DomainCriterion, []byte(normalized))
}
