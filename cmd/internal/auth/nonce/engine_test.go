package nonce

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"commerce/cmd/internal/auth/session"
)

func testEngine(t *testing.T) (*Engine, *session.MemoryStore) {
	t.Helper()

	sessions, err := session.NewMemoryStore(session.DefaultConfig([]byte(strings.Repeat("s", 32))))
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}

	eng, err := NewEngine(NewMemoryStore(sessions), []byte(strings.Repeat("d", 32)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, sessions
}

func TestIssue_TagValidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	issued, err := eng.Issue(ctx, "session-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Tag == "" || issued.Nonce.Value == "" {
		t.Fatal("expected tag and value")
	}
	if issued.Tag == issued.Nonce.Value {
		t.Fatal("tag must differ from the raw nonce")
	}

	taken, err := eng.Take(ctx, "session-1")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if !eng.Validate(taken, issued.Tag) {
		t.Fatal("expected the issued tag to validate")
	}
}

func TestIssue_CreatesSessionRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, sessions := testEngine(t)

	if sessions.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", sessions.Len())
	}
	if _, err := eng.Issue(ctx, "session-2"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected the session row to be guaranteed, got %d rows", sessions.Len())
	}
}

func TestIssue_ReplacesPriorNonce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	first, err := eng.Issue(ctx, "session-3")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := eng.Issue(ctx, "session-3")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	taken, err := eng.Take(ctx, "session-3")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if eng.Validate(taken, first.Tag) {
		t.Fatal("stale tag must not validate against the replacement nonce")
	}
	if !eng.Validate(taken, second.Tag) {
		t.Fatal("fresh tag must validate")
	}
}

func TestTake_SingleUseUnderConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	if _, err := eng.Issue(ctx, "session-4"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const takers = 16
	var wg sync.WaitGroup
	hits := make(chan *Nonce, takers)

	for i := 0; i < takers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := eng.Take(ctx, "session-4")
			if err != nil {
				t.Errorf("Take: %v", err)
				return
			}
			hits <- n
		}()
	}
	wg.Wait()
	close(hits)

	var got int
	for n := range hits {
		if n != nil {
			got++
		}
	}
	if got != 1 {
		t.Fatalf("expected exactly one successful take, got %d", got)
	}
}

func TestTake_ConsumedEvenWhenValidationFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	issued, err := eng.Issue(ctx, "session-5")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// First attempt with a wrong tag burns the nonce anyway.
	taken, err := eng.Take(ctx, "session-5")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if eng.Validate(taken, "bm90LXRoZS10YWc") {
		t.Fatal("wrong tag must not validate")
	}

	// The correct tag can no longer be used.
	again, err := eng.Take(ctx, "session-5")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if again != nil {
		t.Fatal("expected the nonce to be consumed")
	}
	if eng.Validate(again, issued.Tag) {
		t.Fatal("replay must fail")
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := []struct {
		name  string
		age   time.Duration
		valid bool
	}{
		{"at 299s", 299 * time.Second, true},
		{"at 301s", 301 * time.Second, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			eng, _ := testEngine(t)
			issued, err := eng.Issue(ctx, "session-exp")
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			taken, err := eng.Take(ctx, "session-exp")
			if err != nil {
				t.Fatalf("Take: %v", err)
			}

			eng.now = func() time.Time {
				return time.Unix(issued.Nonce.CreatedAt, 0).Add(tc.age)
			}
			if got := eng.Validate(taken, issued.Tag); got != tc.valid {
				t.Fatalf("Validate at %s: got %v, want %v", tc.age, got, tc.valid)
			}
		})
	}
}

func TestValidate_MalformedInputs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	issued, err := eng.Issue(ctx, "session-6")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	taken, err := eng.Take(ctx, "session-6")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}

	for _, tag := range []string{"", "!!!!", "not base64 at all"} {
		if eng.Validate(taken, tag) {
			t.Fatalf("malformed tag %q must not validate", tag)
		}
	}

	// Corrupted stored key material decodes to false, never panics.
	corrupted := *taken
	corrupted.Key = "%%%"
	if corrupted.Verify([]byte("whatever"), issued.Tag, time.Now()) {
		t.Fatal("corrupted key must not validate")
	}

	if eng.Validate(nil, issued.Tag) {
		t.Fatal("nil nonce must not validate")
	}
}

func TestWrongDeploymentSecretFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng, _ := testEngine(t)

	issued, err := eng.Issue(ctx, "session-7")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	taken, err := eng.Take(ctx, "session-7")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}

	if taken.Verify([]byte(strings.Repeat("x", 32)), issued.Tag, time.Now()) {
		t.Fatal("tag must be bound to the deployment secret")
	}
}
