package directory

import (
	"context"
	"errors"
	"testing"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleLecturer, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("dean").Valid() {
		t.Fatal("unknown role should be invalid")
	}
	if Role("").Valid() {
		t.Fatal("empty role should be invalid")
	}
}

func TestInMemoryRoster(t *testing.T) {
	gw := NewInMemory()
	gw.AddClass(7)
	gw.Enroll(7, 102)
	gw.Enroll(7, 101)
	ctx := context.Background()

	roster, err := gw.GetClassRoster(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 || roster[0] != 101 || roster[1] != 102 {
		t.Fatalf("roster must be sorted and complete: %v", roster)
	}

	gw.Withdraw(7, 101)
	roster, err = gw.GetClassRoster(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 1 || roster[0] != 102 {
		t.Fatalf("withdraw must shrink the roster: %v", roster)
	}

	roster, err = gw.GetClassRoster(ctx, 404)
	if err != nil {
		t.Fatalf("missing class resolves empty, not error: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("unexpected roster: %v", roster)
	}
}

func TestInMemoryIsInClass(t *testing.T) {
	gw := NewInMemory()
	gw.Enroll(7, 101)
	ctx := context.Background()

	in, err := gw.IsInClass(ctx, 101, 7)
	if err != nil || !in {
		t.Fatalf("IsInClass(101,7)=%v err=%v", in, err)
	}
	in, err = gw.IsInClass(ctx, 102, 7)
	if err != nil || in {
		t.Fatalf("IsInClass(102,7)=%v err=%v", in, err)
	}
	in, err = gw.IsInClass(ctx, 101, 404)
	if err != nil || in {
		t.Fatalf("missing class is not membership: %v err=%v", in, err)
	}
}

func TestInMemoryListStudents(t *testing.T) {
	gw := NewInMemory()
	gw.AddStudent(103)
	gw.Enroll(7, 101)
	gw.Enroll(9, 102)
	ctx := context.Background()

	students, err := gw.ListStudents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{101, 102, 103}
	if len(students) != len(want) {
		t.Fatalf("unexpected students: %v", students)
	}
	for i := range want {
		if students[i] != want[i] {
			t.Fatalf("students[%d]=%d, want %d", i, students[i], want[i])
		}
	}
}

func TestInMemoryHonorsContext(t *testing.T) {
	gw := NewInMemory()
	gw.Enroll(7, 101)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gw.GetClassRoster(ctx, 7); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := gw.ListStudents(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRateLimitedDelegates(t *testing.T) {
	gw := NewInMemory()
	gw.Enroll(7, 101)
	limited := NewRateLimited(gw, 1000, 10)
	ctx := context.Background()

	in, err := limited.IsInClass(ctx, 101, 7)
	if err != nil || !in {
		t.Fatalf("limited gateway must pass results through: %v err=%v", in, err)
	}
}

func TestRateLimitedAbortsOnCancel(t *testing.T) {
	gw := NewInMemory()
	gw.Enroll(7, 101)
	// Rate 1/sec with the burst already spent forces a wait.
	limited := NewRateLimited(gw, 1, 1)
	ctx := context.Background()
	if _, err := limited.IsInClass(ctx, 101, 7); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := limited.IsInClass(cancelled, 101, 7); err == nil {
		t.Fatal("cancelled context must abort the pending lookup")
	}
}

func TestRateLimitedDisabled(t *testing.T) {
	gw := NewInMemory()
	gw.Enroll(7, 101)
	limited := NewRateLimited(gw, 0, 0)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if _, err := limited.IsInClass(ctx, 101, 7); err != nil {
			t.Fatalf("disabled limiter must never block: %v", err)
		}
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("empty context carries no identity")
	}
	who := Identity{ID: 42, Role: RoleLecturer}
	ctx = ContextWithIdentity(ctx, who)
	got, ok := IdentityFromContext(ctx)
	if !ok || got != who {
		t.Fatalf("round trip failed: got=%v ok=%v", got, ok)
	}
}
