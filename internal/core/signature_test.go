package core

import (
	"encoding/hex"
	"testing"
	"time"
)

const testSigningKey = "key-3ax6xnjp29jd6fds4gc373sgvjxteol0"

func signedEmail(t *testing.T, v *Verifier) *ReceivedEmail {
	t.Helper()
	email := &ReceivedEmail{
		Sender:         "alice@example.com",
		From:           "Alice <alice@example.com>",
		Subject:        "Hello",
		BodyPlain:      "Hi there",
		Timestamp:      1700000000,
		Token:          "f4b5b1e0c3d2a19c8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a3b2c",
		MessageHeaders: `[["Message-Id","<abc@mail.example.com>"]]`,
	}
	email.Signature = v.Sign(email.Timestamp, email.Token)
	return email
}

func TestNewVerifier_EmptyKey(t *testing.T) {
	if _, err := NewVerifier("  ", 0); err == nil {
		t.Fatal("NewVerifier() with empty key: expected error")
	}
}

func TestVerify_ValidSignature(t *testing.T) {
	v, err := NewVerifier(testSigningKey, 0)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	if err := v.Verify(signedEmail(t, v)); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestSign_KnownVector(t *testing.T) {
	v, err := NewVerifier("secret", 0)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	want := "6c24d3b5425e9664e606dd6de4e90aacae02a31b3fec50aef66a3f7540517531"
	if got := v.Sign(1234, "abc"); got != want {
		t.Errorf("Sign() = %q, want %q", got, want)
	}
}

func TestVerify_AnyBitFlipFails(t *testing.T) {
	v, err := NewVerifier(testSigningKey, 0)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	email := signedEmail(t, v)
	raw, err := hex.DecodeString(email.Signature)
	if err != nil {
		t.Fatalf("signature is not hex: %v", err)
	}

	for i := 0; i < len(raw)*8; i++ {
		flipped := append([]byte(nil), raw...)
		flipped[i/8] ^= 1 << (i % 8)

		tampered := *email
		tampered.Signature = hex.EncodeToString(flipped)
		err := v.Verify(&tampered)
		if !HasTextCode(err, ErrorSignatureInvalid) {
			t.Fatalf("bit %d: Verify() error = %v, want %s", i, err, ErrorSignatureInvalid)
		}
	}
}

func TestVerify_TamperedFields(t *testing.T) {
	v, err := NewVerifier(testSigningKey, 0)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *ReceivedEmail)
	}{
		{"timestamp", func(e *ReceivedEmail) { e.Timestamp++ }},
		{"token", func(e *ReceivedEmail) { e.Token += "x" }},
		{"not hex", func(e *ReceivedEmail) { e.Signature = "zz" + e.Signature[2:] }},
		{"odd length", func(e *ReceivedEmail) { e.Signature = e.Signature[1:] }},
		{"empty", func(e *ReceivedEmail) { e.Signature = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := signedEmail(t, v)
			tt.mutate(email)
			if err := v.Verify(email); !HasTextCode(err, ErrorSignatureInvalid) {
				t.Errorf("Verify() error = %v, want %s", err, ErrorSignatureInvalid)
			}
		})
	}
}

func TestVerify_WrongKey(t *testing.T) {
	signer, _ := NewVerifier("other-key", 0)
	v, _ := NewVerifier(testSigningKey, 0)
	if err := v.Verify(signedEmail(t, signer)); !HasTextCode(err, ErrorSignatureInvalid) {
		t.Errorf("Verify() error = %v, want %s", err, ErrorSignatureInvalid)
	}
}

func TestVerify_MaxAge(t *testing.T) {
	v, err := NewVerifier(testSigningKey, 5*time.Minute)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	email := signedEmail(t, v)
	sentAt := time.Unix(email.Timestamp, 0)

	v.Now = func() time.Time { return sentAt.Add(4 * time.Minute) }
	if err := v.Verify(email); err != nil {
		t.Errorf("Verify() within max age error = %v", err)
	}

	v.Now = func() time.Time { return sentAt.Add(6 * time.Minute) }
	if err := v.Verify(email); !HasTextCode(err, ErrorSignatureInvalid) {
		t.Errorf("Verify() past max age error = %v, want %s", err, ErrorSignatureInvalid)
	}
}

func TestVerify_MaxAgeDisabled(t *testing.T) {
	v, _ := NewVerifier(testSigningKey, 0)
	v.Now = func() time.Time { return time.Unix(1700000000, 0).Add(365 * 24 * time.Hour) }
	if err := v.Verify(signedEmail(t, v)); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}
