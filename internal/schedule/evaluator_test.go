package schedule

import (
	"context"
	"errors"
	"testing"

	"campusplan.org/internal/audience"
	"campusplan.org/internal/directory"
)

// countingGateway wraps an in-memory directory and counts lookups so tests
// can assert which decisions avoid the expensive path.
type countingGateway struct {
	inner *directory.InMemory
	calls int
}

func (g *countingGateway) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	g.calls++
	return g.inner.GetClassRoster(ctx, classID)
}

func (g *countingGateway) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	g.calls++
	return g.inner.IsInClass(ctx, userID, classID)
}

func (g *countingGateway) ListStudents(ctx context.Context) ([]int64, error) {
	g.calls++
	return g.inner.ListStudents(ctx)
}

func testEvaluator(t *testing.T) (*Evaluator, *countingGateway) {
	t.Helper()
	gw := directory.NewInMemory()
	gw.AddClass(7)
	gw.Enroll(7, 101)
	gw.Enroll(7, 102)
	gw.AddClass(9)
	gw.Enroll(9, 103)
	counting := &countingGateway{inner: gw}
	resolver, err := audience.NewResolver(counting)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEvaluator(resolver)
	if err != nil {
		t.Fatal(err)
	}
	return e, counting
}

func classTask(status Status) Task {
	return Task{
		ID:          "task-1",
		CreatorID:   1,
		CreatorRole: directory.RoleLecturer,
		Status:      status,
		Targets:     []audience.TargetSpec{audience.WholeClass{ClassID: 7}},
	}
}

func TestCanViewMatrix(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	task := classTask(StatusPending)

	cases := []struct {
		name  string
		actor directory.Identity
		want  bool
	}{
		{"creator", directory.Identity{ID: 1, Role: directory.RoleLecturer}, true},
		{"class member", directory.Identity{ID: 101, Role: directory.RoleStudent}, true},
		{"other class", directory.Identity{ID: 103, Role: directory.RoleStudent}, false},
		{"other lecturer", directory.Identity{ID: 2, Role: directory.RoleLecturer}, false},
		{"admin", directory.Identity{ID: 50, Role: directory.RoleAdmin}, true},
	}
	for _, c := range cases {
		got, err := e.CanView(ctx, c.actor, task)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: CanView=%v, want %v", c.name, got, c.want)
		}
	}
}

func TestCanViewEvent(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	ev := CalendarEvent{
		ID:           "ev-1",
		CreatorID:    1,
		CreatorRole:  directory.RoleLecturer,
		Participants: []audience.TargetSpec{audience.DirectUser{UserID: 103, Role: directory.RoleStudent}},
	}
	ok, err := e.CanView(ctx, directory.Identity{ID: 103, Role: directory.RoleStudent}, ev)
	if err != nil || !ok {
		t.Fatalf("invited participant should see the event: ok=%v err=%v", ok, err)
	}
	ok, err = e.CanView(ctx, directory.Identity{ID: 101, Role: directory.RoleStudent}, ev)
	if err != nil || ok {
		t.Fatalf("uninvited student should not see the event: ok=%v err=%v", ok, err)
	}
}

func TestCanTransitionForwardOnly(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	member := directory.Identity{ID: 101, Role: directory.RoleStudent}

	cases := []struct {
		from, to Status
		allowed  bool
		reason   Reason
	}{
		{StatusPending, StatusInProgress, true, ""},
		{StatusPending, StatusCancelled, true, ""},
		{StatusInProgress, StatusCompleted, true, ""},
		{StatusInProgress, StatusCancelled, true, ""},
		{StatusPending, StatusCompleted, false, ReasonInvalidTransition},
		{StatusInProgress, StatusPending, false, ReasonInvalidTransition},
		{StatusCompleted, StatusInProgress, false, ReasonInvalidTransition},
		{StatusCancelled, StatusInProgress, false, ReasonInvalidTransition},
		{StatusCompleted, StatusCancelled, false, ReasonInvalidTransition},
	}
	for _, c := range cases {
		d, err := e.CanTransition(ctx, member, classTask(c.from), c.to)
		if err != nil {
			t.Fatalf("%s->%s: %v", c.from, c.to, err)
		}
		if c.allowed && d.Denied() {
			t.Fatalf("%s->%s: denied %q, want allow", c.from, c.to, d.Reason)
		}
		if !c.allowed && (d.Allowed || d.Reason != c.reason) {
			t.Fatalf("%s->%s: got %+v, want deny %q", c.from, c.to, d, c.reason)
		}
	}
}

func TestAdminCannotSkipStates(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	admin := directory.Identity{ID: 50, Role: directory.RoleAdmin}

	d, err := e.CanTransition(ctx, admin, classTask(StatusPending), StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Reason != ReasonInvalidTransition {
		t.Fatalf("admin may not skip in_progress: %+v", d)
	}
	d, err = e.CanTransition(ctx, admin, classTask(StatusCompleted), StatusInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Reason != ReasonInvalidTransition {
		t.Fatalf("nothing leaves a terminal state, admin included: %+v", d)
	}
}

func TestCreatorCannotDriveLifecycle(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	creator := directory.Identity{ID: 1, Role: directory.RoleLecturer}

	d, err := e.CanTransition(ctx, creator, classTask(StatusPending), StatusInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Reason != ReasonNotAudience {
		t.Fatalf("the lifecycle belongs to the audience, not the creator: %+v", d)
	}
}

func TestUnknownStatusDenied(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()
	member := directory.Identity{ID: 101, Role: directory.RoleStudent}

	task := classTask("archived")
	d, err := e.CanTransition(ctx, member, task, StatusInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Reason != ReasonInvalidTransition {
		t.Fatalf("unknown current status must deny: %+v", d)
	}
	d, err = e.CanTransition(ctx, member, classTask(StatusPending), "archived")
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Reason != ReasonInvalidTransition {
		t.Fatalf("unknown next status must deny: %+v", d)
	}
}

func TestCanMutateTargets(t *testing.T) {
	e, _ := testEvaluator(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		actor   directory.Identity
		status  Status
		allowed bool
		reason  Reason
	}{
		{"creator on live task", directory.Identity{ID: 1, Role: directory.RoleLecturer}, StatusPending, true, ""},
		{"admin on live task", directory.Identity{ID: 50, Role: directory.RoleAdmin}, StatusInProgress, true, ""},
		{"member on live task", directory.Identity{ID: 101, Role: directory.RoleStudent}, StatusPending, false, ReasonNotCreator},
		{"creator on completed task", directory.Identity{ID: 1, Role: directory.RoleLecturer}, StatusCompleted, false, ReasonItemTerminal},
		{"admin on cancelled task", directory.Identity{ID: 50, Role: directory.RoleAdmin}, StatusCancelled, false, ReasonItemTerminal},
	}
	for _, c := range cases {
		d, err := e.CanMutateTargets(ctx, c.actor, classTask(c.status))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if c.allowed && d.Denied() {
			t.Fatalf("%s: denied %q, want allow", c.name, d.Reason)
		}
		if !c.allowed && (d.Allowed || d.Reason != c.reason) {
			t.Fatalf("%s: got %+v, want deny %q", c.name, d, c.reason)
		}
	}
}

func TestRelationChecksLocalFirst(t *testing.T) {
	e, gw := testEvaluator(t)
	ctx := context.Background()
	task := classTask(StatusPending)

	if _, err := e.CanView(ctx, directory.Identity{ID: 50, Role: directory.RoleAdmin}, task); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CanView(ctx, directory.Identity{ID: 1, Role: directory.RoleLecturer}, task); err != nil {
		t.Fatal(err)
	}
	if gw.calls != 0 {
		t.Fatalf("admin and creator checks must not hit the directory, saw %d lookups", gw.calls)
	}

	if _, err := e.CanView(ctx, directory.Identity{ID: 101, Role: directory.RoleStudent}, task); err != nil {
		t.Fatal(err)
	}
	if gw.calls == 0 {
		t.Fatal("audience check needs the directory")
	}
}

type failingGateway struct{}

var errDirDown = errors.New("directory down")

func (failingGateway) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	return nil, errDirDown
}
func (failingGateway) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	return false, errDirDown
}
func (failingGateway) ListStudents(ctx context.Context) ([]int64, error) {
	return nil, errDirDown
}

func TestDirectoryFailureFailsClosed(t *testing.T) {
	resolver, _ := audience.NewResolver(failingGateway{})
	e, _ := NewEvaluator(resolver)
	ctx := context.Background()
	member := directory.Identity{ID: 101, Role: directory.RoleStudent}

	ok, err := e.CanView(ctx, member, classTask(StatusPending))
	if !errors.Is(err, errDirDown) {
		t.Fatalf("directory failure must surface, got %v", err)
	}
	if ok {
		t.Fatal("failure must never read as access")
	}
	d, err := e.CanTransition(ctx, member, classTask(StatusPending), StatusInProgress)
	if !errors.Is(err, errDirDown) {
		t.Fatalf("directory failure must surface, got %v", err)
	}
	if d.Allowed {
		t.Fatal("failure must never read as allow")
	}
}

func TestForceDeleteAndRestoreAdminOnly(t *testing.T) {
	e, _ := testEvaluator(t)

	if d := e.CanForceDelete(directory.Identity{ID: 50, Role: directory.RoleAdmin}); d.Denied() {
		t.Fatalf("admin force delete denied: %+v", d)
	}
	if d := e.CanForceDelete(directory.Identity{ID: 1, Role: directory.RoleLecturer}); d.Allowed {
		t.Fatalf("lecturer force delete allowed: %+v", d)
	}
	if d := e.CanRestore(directory.Identity{ID: 101, Role: directory.RoleStudent}); d.Allowed {
		t.Fatalf("student restore allowed: %+v", d)
	}
}
