package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 10 matches the salt rounds used by existing user records.
const bcryptCost = bcrypt.DefaultCost

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version in
// constant time.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
