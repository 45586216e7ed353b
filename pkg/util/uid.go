// Package util holds small helpers shared across the module.
package util

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math/big"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher
func Md5ThenHex(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

// NewUID returns a fresh DICOM UID in the 2.25 UUID-derived form
// (PS3.5 B.2): "2.25." followed by the UUID as a decimal integer.
func NewUID() string {
	return uidFrom(uuid.New())
}

// HashUID derives a deterministic UID from any JSON-serializable value.
// The same input always yields the same UID, which keeps rewritten files
// stable across runs.
func HashUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hash := md5.Sum(raw)
	id, err := uuid.FromBytes(hash[:])
	if err != nil {
		return ""
	}
	return uidFrom(id)
}

func uidFrom(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	return "2.25." + n.String()
}
