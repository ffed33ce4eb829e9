package providertest

import (
	"testing"

	"datacrunch-hq/relay/pkg/failure"
)

// SampleInput is a small dataset used across adapter tests.
func SampleInput() map[string]any {
	return map[string]any{
		"sales": []any{
			map[string]any{"month": "Jan", "amount": 1200},
			map[string]any{"month": "Feb", "amount": 1500},
		},
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertCategory fails the test unless err is a *failure.Error of the given
// category, and returns it.
func AssertCategory(t *testing.T, err error, want failure.Category) *failure.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s failure, got nil", want)
	}
	fe, ok := failure.As(err)
	if !ok {
		t.Fatalf("expected *failure.Error, got %T: %v", err, err)
	}
	if fe.Category != want {
		t.Fatalf("category = %q, want %q (message: %s)", fe.Category, want, fe.Message)
	}
	return fe
}
