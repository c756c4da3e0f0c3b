package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password at the default bcrypt cost and
// returns it ready to store in the users table.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches the stored hash. Any error,
// including a hash bcrypt cannot parse, means the credentials are rejected.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
