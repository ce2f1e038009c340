package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mikey/mail-relay/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type relayFixture struct {
	service    *RelayService
	verifier   *Verifier
	log        *mapLog
	dispatcher *stubDispatcher
	chat       *stubChat
	logs       *observer.ObservedLogs
}

func newRelayFixture(t *testing.T, suppression SuppressionChecker, options RelayOptions) *relayFixture {
	t.Helper()
	verifier, err := NewVerifier(testSigningKey, 0)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	observed, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(observed)

	f := &relayFixture{
		verifier:   verifier,
		log:        newMapLog(),
		dispatcher: &stubDispatcher{},
		chat:       &stubChat{},
		logs:       logs,
	}
	forwarder := NewForwarder(f.chat, nil, utils.NewTextProcessor(logger), 0, logger)
	f.service = NewRelayService(verifier, f.log, f.dispatcher, forwarder, suppression, logger, options)
	return f
}

func TestAutoReply_SendsOnceWithinCooldown(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})
	email := signedEmail(t, f.verifier)

	outcome, err := f.service.AutoReply(context.Background(), "thanks", email)
	if err != nil {
		t.Fatalf("AutoReply() error = %v", err)
	}
	if outcome != OutcomeSent {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeSent)
	}

	calls := f.dispatcher.calls()
	if len(calls) != 1 {
		t.Fatalf("dispatcher calls = %d, want 1", len(calls))
	}
	got := calls[0]
	if got.Recipient != email.From {
		t.Errorf("Recipient = %q, want %q", got.Recipient, email.From)
	}
	if got.Subject != "Re: Hello" {
		t.Errorf("Subject = %q, want %q", got.Subject, "Re: Hello")
	}
	if got.Template != "thanks" {
		t.Errorf("Template = %q, want %q", got.Template, "thanks")
	}
	if got.InReplyTo != "<abc@mail.example.com>" || got.References != "<abc@mail.example.com>" {
		t.Errorf("threading headers = %q / %q", got.InReplyTo, got.References)
	}

	outcome, err = f.service.AutoReply(context.Background(), "thanks", email)
	if err != nil {
		t.Fatalf("second AutoReply() error = %v", err)
	}
	if outcome != OutcomeDuplicate {
		t.Errorf("second outcome = %q, want %q", outcome, OutcomeDuplicate)
	}
	if n := len(f.dispatcher.calls()); n != 1 {
		t.Errorf("dispatcher calls after duplicate = %d, want 1", n)
	}
	if n := f.logs.FilterField(zap.String("action", "duplicate")).Len(); n != 1 {
		t.Errorf("duplicate log entries = %d, want 1", n)
	}
}

func TestAutoReply_DedupUsesNormalizedAddress(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})

	first := signedEmail(t, f.verifier)
	if _, err := f.service.AutoReply(context.Background(), "thanks", first); err != nil {
		t.Fatalf("AutoReply() error = %v", err)
	}

	second := signedEmail(t, f.verifier)
	second.From = "ALICE@Example.com"
	outcome, err := f.service.AutoReply(context.Background(), "thanks", second)
	if err != nil {
		t.Fatalf("AutoReply() error = %v", err)
	}
	if outcome != OutcomeDuplicate {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeDuplicate)
	}
}

func TestAutoReply_InvalidSignature(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})
	email := signedEmail(t, f.verifier)
	email.Token = "forged"

	_, err := f.service.AutoReply(context.Background(), "thanks", email)
	if !HasTextCode(err, ErrorSignatureInvalid) {
		t.Fatalf("AutoReply() error = %v, want %s", err, ErrorSignatureInvalid)
	}
	if n := len(f.dispatcher.calls()); n != 0 {
		t.Errorf("dispatcher calls = %d, want 0", n)
	}
	if !f.log.CanSend("alice@example.com") {
		t.Error("rejected request must not touch the response log")
	}
}

func TestAutoReply_MessageIDErrors(t *testing.T) {
	tests := []struct {
		name     string
		headers  string
		wantCode string
	}{
		{"missing", `[["Subject","Hello"]]`, ErrorMissingMessageID},
		{"malformed", `[[`, ErrorMalformedProviderResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelayFixture(t, nil, RelayOptions{})
			email := signedEmail(t, f.verifier)
			email.MessageHeaders = tt.headers

			_, err := f.service.AutoReply(context.Background(), "thanks", email)
			if !HasTextCode(err, tt.wantCode) {
				t.Fatalf("AutoReply() error = %v, want %s", err, tt.wantCode)
			}
			if n := len(f.dispatcher.calls()); n != 0 {
				t.Errorf("dispatcher calls = %d, want 0", n)
			}
		})
	}
}

func TestAutoReply_Suppressed(t *testing.T) {
	f := newRelayFixture(t, suppressAll{"alice@example.com": true}, RelayOptions{})

	outcome, err := f.service.AutoReply(context.Background(), "thanks", signedEmail(t, f.verifier))
	if err != nil {
		t.Fatalf("AutoReply() error = %v", err)
	}
	if outcome != OutcomeSuppressed {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeSuppressed)
	}
	if n := len(f.dispatcher.calls()); n != 0 {
		t.Errorf("dispatcher calls = %d, want 0", n)
	}
	if !f.log.CanSend("alice@example.com") {
		t.Error("suppressed address must not be recorded")
	}
}

func TestAutoReply_DispatchFailureStillRecorded(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})
	f.dispatcher.sendFunc = func(ctx context.Context, tpl *EmailTemplate) (string, error) {
		return "", ProviderError(errors.New("boom"), "mailgun", "mailgun rejected the message")
	}

	_, err := f.service.AutoReply(context.Background(), "thanks", signedEmail(t, f.verifier))
	if !HasTextCode(err, ErrorProviderError) {
		t.Fatalf("AutoReply() error = %v, want %s", err, ErrorProviderError)
	}
	if f.log.CanSend("alice@example.com") {
		t.Error("address is logged before dispatch, so a failed send still starts the cooldown")
	}
}

func TestAutoReply_AtomicDedup(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{AtomicDedup: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.AutoReply(context.Background(), "thanks", signedEmail(t, f.verifier)); err != nil {
				t.Errorf("AutoReply() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := len(f.dispatcher.calls()); n != 1 {
		t.Errorf("dispatcher calls = %d, want 1", n)
	}
	if f.log.reserves != 20 {
		t.Errorf("TryReserve calls = %d, want 20", f.log.reserves)
	}
}

func TestForward_InvalidSignature(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})
	email := signedEmail(t, f.verifier)
	email.Signature = "00"

	err := f.service.Forward(context.Background(), "C123", email)
	if !HasTextCode(err, ErrorSignatureInvalid) {
		t.Fatalf("Forward() error = %v, want %s", err, ErrorSignatureInvalid)
	}
	if len(f.chat.posted) != 0 {
		t.Errorf("chat posts = %d, want 0", len(f.chat.posted))
	}
}

func TestForward_PostsBothStages(t *testing.T) {
	f := newRelayFixture(t, nil, RelayOptions{})

	if err := f.service.Forward(context.Background(), "C123", signedEmail(t, f.verifier)); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if len(f.chat.posted) != 2 {
		t.Fatalf("chat posts = %d, want 2", len(f.chat.posted))
	}
}
