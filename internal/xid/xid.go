package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// ReceiptNumber builds a human-readable receipt number such as
// JSS-20260831-483920: store prefix, sale date, six random digits.
func ReceiptNumber(at time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	suffix := int64(time.Now().UnixNano() % 1000000)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("JSS-%s-%06d", at.Format("20060102"), suffix)
}
