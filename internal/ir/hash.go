package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for a
// future change of encoding.
const (
	DomainFlat     = "formstate/flat/v1"
	DomainSnapshot = "formstate/snapshot/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator keeps
// domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FlatHash returns the content hash of a flattened value. Equal data always
// yields the same hash regardless of map iteration order or integer width.
func FlatHash(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("FlatHash: %w", err)
	}
	return hashWithDomain(DomainFlat, canonical), nil
}

// SnapshotHash identifies a stored snapshot of one entity.
func SnapshotHash(entity string, flat any) (string, error) {
	obj := IRObject{"entity": IRString(entity)}
	data, err := FromGo(flat)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	obj["data"] = data

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustFlatHash is like FlatHash but panics on error.
func MustFlatHash(v any) string {
	h, err := FlatHash(v)
	if err != nil {
		panic(err)
	}
	return h
}
