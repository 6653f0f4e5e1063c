package password

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GeneratedLength is the fixed length of auto-generated credentials.
const GeneratedLength = 12

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%&*-_+="
)

// Hash returns the bcrypt hash of a plaintext password.
func Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)

	return string(bytes), err
}

// Verify reports whether the plaintext matches the stored hash.
func Verify(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))

	return err == nil
}

// Generate produces a random credential of GeneratedLength characters
// containing at least one lowercase letter, one uppercase letter, one
// digit and one symbol. The result is shuffled so the guaranteed
// characters are not positionally biased.
func Generate() (string, error) {
	buf := make([]byte, 0, GeneratedLength)

	// One guaranteed character per class.
	for _, class := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		ch, err := pick(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	all := lowerChars + upperChars + digitChars + symbolChars
	for len(buf) < GeneratedLength {
		ch, err := pick(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	if err := shuffle(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func pick(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(buf []byte) error {
	for i := len(buf) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		buf[i], buf[j] = buf[j], buf[i]
	}
	return nil
}
