package logger

import "testing"

func TestGetInitializesOnce(t *testing.T) {
	Init("test")
	first := Get()
	if first == nil {
		t.Fatal("expected a logger")
	}

	Init("production")
	if Get() != first {
		t.Error("expected Init to be a no-op after the first call")
	}

	if Named("balance") == nil {
		t.Error("expected a named logger")
	}
	Sync()
}
