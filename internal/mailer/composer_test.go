package mailer

import (
	"strings"
	"testing"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(
		"http://localhost:5001",
		"https://www.example.com/candidate-portal",
		"HR Team",
		"Application Received",
	)
	if err != nil {
		t.Fatalf("NewComposer() error: %v", err)
	}
	return c
}

func TestPixelURL(t *testing.T) {
	c := newTestComposer(t)
	got := c.PixelURL("tok-123")
	want := "http://localhost:5001/track/tok-123"
	if got != want {
		t.Errorf("PixelURL() = %q, want %q", got, want)
	}
}

func TestClickURL(t *testing.T) {
	c := newTestComposer(t)
	got := c.ClickURL("tok-123")
	want := "http://localhost:5001/click/tok-123?url=https%3A%2F%2Fwww.example.com%2Fcandidate-portal"
	if got != want {
		t.Errorf("ClickURL() = %q, want %q", got, want)
	}
}

func TestCompose(t *testing.T) {
	c := newTestComposer(t)

	msg, err := c.Compose("tok-123")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	if msg.Text == "" {
		t.Error("plain-text fallback is empty")
	}
	if !strings.Contains(msg.HTML, `src="http://localhost:5001/track/tok-123" width="1" height="1"`) {
		t.Error("HTML is missing the tracking pixel")
	}
	if !strings.Contains(msg.HTML, `href="http://localhost:5001/click/tok-123?url=`) {
		t.Error("HTML is missing the tracked CTA link")
	}
	if !strings.Contains(msg.HTML, "Application Received") {
		t.Error("HTML is missing the subject")
	}
	if !strings.Contains(msg.HTML, "HR Team") {
		t.Error("HTML is missing the sender name")
	}
}

func TestComposeDistinctTokens(t *testing.T) {
	c := newTestComposer(t)

	a, err := c.Compose("tok-a")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	b, err := c.Compose("tok-b")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if a.HTML == b.HTML {
		t.Error("different tokens must produce different bodies")
	}
	if strings.Contains(b.HTML, "tok-a") {
		t.Error("token leaked across compositions")
	}
}
