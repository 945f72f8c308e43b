package handler

import (
	"net/http"
	"testing"

	"fishsense/internal/apperror"
	"fishsense/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"1", 0, 1},
		{"", 5, 5},
		{"abc", 10, 10},
		{"-1", 5, 5},
		{"0", 5, 5},
		{"12.5", 5, 5},
	}

	for _, tt := range tests {
		result := atoiDefault(tt.input, tt.def)
		if result != tt.expected {
			t.Errorf("atoiDefault(%q, %d) = %d, expected %d", tt.input, tt.def, result, tt.expected)
		}
	}
}

func TestPasswordMatches(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("reef"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	plain := &config.Config{Password: "reef"}
	if !passwordMatches(plain, "reef") || passwordMatches(plain, "Reef") {
		t.Error("Plain password comparison is wrong")
	}

	hashed := &config.Config{Password: "ignored", PasswordHash: string(hash)}
	if !passwordMatches(hashed, "reef") {
		t.Error("Expected bcrypt hash to match")
	}
	if passwordMatches(hashed, "ignored") {
		t.Error("Expected plain password to be ignored when a hash is set")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.StoreUnavailable, http.StatusServiceUnavailable},
		{apperror.ServerRejected, http.StatusBadGateway},
		{apperror.NetworkTransportFailed, http.StatusBadGateway},
		{apperror.ResponseUnparsable, http.StatusBadGateway},
		{apperror.MeasurementFailed, http.StatusUnprocessableEntity},
		{apperror.StoreWriteFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
