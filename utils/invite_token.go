package utils

import (
	"crypto/rand"
	"encoding/hex"
)

const inviteTokenBytes = 32

// GenerateInviteToken returns a 64-character lowercase hex string backed by
// 256 bits of CSPRNG entropy. It is the sole credential for resolving and
// accepting an invite.
func GenerateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
