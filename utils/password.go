package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when a user does not exist, so unknown
// usernames take as long to reject as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// BurnPasswordCheck spends the same work as CheckPassword and always fails.
func BurnPasswordCheck(raw string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
	return false
}
