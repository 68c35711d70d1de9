package amqp

import (
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{100, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp 127.0.0.1:5672: connection refused"), true},
		{"closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"eof", errors.New("read tcp: EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"unrelated", errors.New("queue not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	if c.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}
	if c.state != StateOpen {
		t.Fatalf("state = %d, want StateOpen after %d failures", c.state, maxFailures)
	}
	if !c.isCircuitOpen() {
		t.Fatal("circuit should be open")
	}
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)

	if c.isCircuitOpen() {
		t.Fatal("circuit should allow a probe after the open timeout")
	}
	if c.state != StateHalfOpen {
		t.Fatalf("state = %d, want StateHalfOpen", c.state)
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}
	c.recordSuccess()

	if c.state != StateClosed {
		t.Fatalf("state = %d, want StateClosed after success", c.state)
	}
	if c.failureCount != 0 {
		t.Fatalf("failureCount = %d, want 0 after success", c.failureCount)
	}
}

func TestDebtSyncMessageRoundTrip(t *testing.T) {
	orig := NewDebtSyncMessage(42, 7)
	body, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.Type != TypeDebtSync {
		t.Fatalf("envelope type = %q, want %q", env.Type, TypeDebtSync)
	}

	msg, err := DebtSyncFromEnvelope(env)
	if err != nil {
		t.Fatalf("DebtSyncFromEnvelope: %v", err)
	}
	if msg.ID != 42 || msg.Version != 7 {
		t.Errorf("got ID=%d Version=%d, want 42/7", msg.ID, msg.Version)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestDebtDeleteMessageRoundTrip(t *testing.T) {
	orig := NewDebtDeleteMessage(9, "Car loan")
	body, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.Type != TypeDebtDelete {
		t.Fatalf("envelope type = %q, want %q", env.Type, TypeDebtDelete)
	}

	msg, err := DebtDeleteFromEnvelope(env)
	if err != nil {
		t.Fatalf("DebtDeleteFromEnvelope: %v", err)
	}
	if msg.ID != 9 || msg.Name != "Car loan" {
		t.Errorf("got ID=%d Name=%q, want 9/Car loan", msg.ID, msg.Name)
	}
}

func TestParseEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := ParseEnvelope([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
