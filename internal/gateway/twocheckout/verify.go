package twocheckout

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Hash computes the INS notification hash: the uppercased hex MD5 over the
// concatenation of sale id, vendor id, invoice id and the shared secret.
func Hash(saleID, vendorID, invoiceID, secret string) string {
	sum := md5.Sum([]byte(saleID + vendorID + invoiceID + secret))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifyHash reports whether the hash supplied on an INS notification
// matches the expected value. Comparison is constant time.
func VerifyHash(supplied, saleID, vendorID, invoiceID, secret string) bool {
	expected := Hash(saleID, vendorID, invoiceID, secret)
	return subtle.ConstantTimeCompare([]byte(strings.ToUpper(supplied)), []byte(expected)) == 1
}
