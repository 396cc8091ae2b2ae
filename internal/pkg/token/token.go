package token

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// CompanyCodeLength is the length of issued company codes
const CompanyCodeLength = 10

const companyCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewSessionID generates an opaque, unguessable session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// NewCompanyCode generates a random lowercase-alphanumeric company code
func NewCompanyCode() (string, error) {
	return randomString(CompanyCodeLength, companyCodeAlphabet)
}

// randomString samples length characters uniformly from alphabet using crypto/rand
func randomString(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
