package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("correct horse battery staple", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hashed, "correct horse battery staple"); err != nil {
		t.Errorf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hashed, "wrong password"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	// A nonsense cost must still yield a verifiable hash rather than an
	// error at login time.
	for _, cost := range []int{-1, 0, 99} {
		hashed, err := HashPassword("hunter2hunter2", cost)
		if err != nil {
			t.Fatalf("HashPassword(cost=%d): %v", cost, err)
		}
		if got, err := bcrypt.Cost([]byte(hashed)); err != nil || got != bcrypt.DefaultCost {
			t.Errorf("cost = %d (err %v), want %d", got, err, bcrypt.DefaultCost)
		}
		if err := ComparePassword(hashed, "hunter2hunter2"); err != nil {
			t.Errorf("ComparePassword(cost=%d): %v", cost, err)
		}
	}
}
