package utils

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Digest hashes s to an md5 hex string, then base64-encodes the result
// iter times. Both the token generator and the doc tree keys depend on
// this exact shape.
func Digest(s string, iter int) string {
	sum := md5.Sum([]byte(s))
	out := hex.EncodeToString(sum[:])
	for i := 0; i < iter; i++ {
		out = base64.StdEncoding.EncodeToString([]byte(out))
	}
	return out
}

// GenToken produces an opaque bearer token from a shuffled ASCII
// alphabet and the current timestamp.
func GenToken() string {
	base := make([]byte, 128)
	for i := range base {
		base[i] = byte(i)
	}
	rand.Shuffle(len(base), func(i, j int) {
		base[i], base[j] = base[j], base[i]
	})
	return Digest(string(base)+fmt.Sprint(NowMillis()), 3)
}

// DeriveCode derives the activation code sent in the welcome mail:
// the first 6 hex characters of md5(token), uppercased.
func DeriveCode(token string) string {
	sum := md5.Sum([]byte(token))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:6])
}

// NowMillis returns the current unix time in milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
