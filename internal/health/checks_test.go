package health

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestListenerCheck(t *testing.T) {
	url := ""
	check := ListenerCheck(func() string { return url })

	if err := check(context.Background()); err == nil {
		t.Error("Expected error while unbound")
	}

	url = "http://127.0.0.1:8080"
	if err := check(context.Background()); err != nil {
		t.Errorf("Expected no error once bound, got %v", err)
	}
}

func TestReloadCheck(t *testing.T) {
	var lastErr error
	check := ReloadCheck(func() error { return lastErr })

	if err := check(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	lastErr = errors.New("route 0: path is required")
	err := check(context.Background())
	if err == nil || !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected wrapped reload error, got %v", err)
	}
	if !errors.Is(err, lastErr) {
		t.Error("Expected reload error to be unwrappable")
	}
}
