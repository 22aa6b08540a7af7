package service

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "Sup3rSecret!" {
		t.Fatal("hash equals the plaintext password")
	}

	other, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == other {
		t.Error("two hashes of the same password should differ (per-call salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct password", "Sup3rSecret!", true},
		{"wrong password", "WrongSecret1!", false},
		{"empty password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(hash, tt.password); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
