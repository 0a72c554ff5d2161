package ir

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainProduct prefixes every product hash.
// Version suffix enables future algorithm migration.
const DomainProduct = "hitkit/product/v1"

// ProductIDFor computes the identity of the collection written by process
// under label:instance with the given element kind.
//
// Format: SHA256(domain 0x00 process 0x00 label 0x00 instance 0x00 kind).
// Names are NFC-normalized first, so visually identical labels typed with
// different Unicode compositions map to the same product.
func ProductIDFor(process, label, instance string, kind ProductKind) ProductID {
	h := sha256.New()
	h.Write([]byte(DomainProduct))
	for _, part := range []string{process, label, instance, string(kind)} {
		h.Write([]byte{0x00})
		h.Write([]byte(NormalizeName(part)))
	}
	return ProductID(hex.EncodeToString(h.Sum(nil)))
}

// NormalizeName returns the NFC form of a label, instance or process name.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}
