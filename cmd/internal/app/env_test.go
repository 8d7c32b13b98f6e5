package app

import (
	"testing"
	"time"
)

func TestEnvStrings(t *testing.T) {
	t.Setenv("MESSENGER_TEST_HOSTS", " cass-1, cass-2 ,,cass-3 ")

	got := EnvStrings("MESSENGER_TEST_HOSTS", nil)
	want := []string{"cass-1", "cass-2", "cass-3"}
	if len(got) != len(want) {
		t.Fatalf("EnvStrings: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EnvStrings[%d]: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestEnvStrings_Default(t *testing.T) {
	t.Setenv("MESSENGER_TEST_HOSTS", "")

	if got := EnvStrings("MESSENGER_TEST_HOSTS", nil); got != nil {
		t.Fatalf("unset var must return default, got %v", got)
	}
	if got := EnvStrings("MESSENGER_TEST_HOSTS", []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("default not returned: %v", got)
	}
}

func TestEnvScalars(t *testing.T) {
	t.Setenv("MESSENGER_TEST_INT", "42")
	t.Setenv("MESSENGER_TEST_BAD_INT", "-7")
	t.Setenv("MESSENGER_TEST_BOOL", "true")
	t.Setenv("MESSENGER_TEST_DUR", "150ms")

	if got := EnvInt("MESSENGER_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt: got %d", got)
	}
	if got := EnvInt("MESSENGER_TEST_BAD_INT", 1); got != 1 {
		t.Fatalf("EnvInt must reject non-positive values: got %d", got)
	}
	if !EnvBool("MESSENGER_TEST_BOOL", false) {
		t.Fatalf("EnvBool: want true")
	}
	if got := EnvDuration("MESSENGER_TEST_DUR", time.Second); got != 150*time.Millisecond {
		t.Fatalf("EnvDuration: got %v", got)
	}
}
