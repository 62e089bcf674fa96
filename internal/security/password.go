package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the original deployment's hash parameters so that
// records created before the migration still verify.
const bcryptCost = 10

func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the stored hash. A
// malformed hash fails closed: it verifies as false rather than erroring.
func VerifyPassword(password string, storedHash []byte) bool {
	return bcrypt.CompareHashAndPassword(storedHash, []byte(password)) == nil
}
