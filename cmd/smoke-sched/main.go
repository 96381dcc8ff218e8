package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"campusplan.org/internal/audience"
	"campusplan.org/internal/audit"
	"campusplan.org/internal/config"
	"campusplan.org/internal/directory"
	"campusplan.org/internal/ids"
	"campusplan.org/internal/interval"
	"campusplan.org/internal/obs"
	"campusplan.org/internal/schedule"
)

// Runs the full resolve -> authorize -> expand -> conflict pipeline against
// in-memory collaborators. Exits non-zero on the first divergence.
func main() {
	obs.Init()
	obs.InitBuildInfo("dev", "none")

	cfg := config.Default()
	if path := os.Getenv("CAMPUSPLAN_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("load config %s: %v", path, err)
		}
		cfg = loaded
	}

	gw := directory.NewInMemory()
	gw.AddClass(7)
	gw.Enroll(7, 101)
	gw.Enroll(7, 102)
	gw.AddClass(9)
	gw.Enroll(9, 103)

	var gateway directory.Gateway = directory.NewInstrumented(
		directory.NewRateLimited(gw, cfg.DirectoryRatePerSecond, cfg.DirectoryRateBurst))
	store := interval.NewInMemory()

	svc, err := schedule.NewService(gateway, store,
		schedule.WithConflictPolicy(schedule.ConflictPolicy(cfg.ConflictPolicy)))
	if err != nil {
		log.Fatalf("build service: %v", err)
	}

	lecturer := directory.Identity{ID: 1, Role: directory.RoleLecturer}
	member := directory.Identity{ID: 101, Role: directory.RoleStudent}
	outsider := directory.Identity{ID: 103, Role: directory.RoleStudent}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = audit.WithRequestID(ctx, ids.RequestID())
	ctx = directory.ContextWithIdentity(ctx, lecturer)

	task, err := svc.NewTask(lecturer, nil, []audience.TargetSpec{audience.WholeClass{ClassID: 7}})
	if err != nil {
		log.Fatalf("new task: %v", err)
	}

	if ok, err := svc.CanView(ctx, member, task); err != nil || !ok {
		log.Fatalf("class member should see the task: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.CanView(ctx, outsider, task); err != nil || ok {
		log.Fatalf("outsider should not see the task: ok=%v err=%v", ok, err)
	}

	d, err := svc.CanTransition(ctx, member, task, schedule.StatusInProgress)
	if err != nil || d.Denied() {
		log.Fatalf("member should start the task: %+v err=%v", d, err)
	}
	task.Status = schedule.StatusCompleted
	d, err = svc.CanTransition(ctx, directory.Identity{ID: 2, Role: directory.RoleAdmin}, task, schedule.StatusInProgress)
	if err != nil || !d.Denied() || d.Reason != schedule.ReasonInvalidTransition {
		log.Fatalf("completed task must not reopen: %+v err=%v", d, err)
	}

	base := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	busyEnd := base.Add(time.Hour)
	if err := store.Commit(ctx, member, interval.Committed{
		Interval: interval.Interval{Start: base, End: busyEnd},
		EventID:  ids.New(),
	}); err != nil {
		log.Fatalf("seed committed interval: %v", err)
	}

	ev, err := svc.NewEvent(lecturer, base.Add(30*time.Minute), base.Add(90*time.Minute),
		[]audience.TargetSpec{audience.WholeClass{ClassID: 7}}, nil)
	if err != nil {
		log.Fatalf("new event: %v", err)
	}
	plan, err := svc.PlanEvent(ctx, ev)
	if err != nil {
		log.Fatalf("plan event: %v", err)
	}
	if plan.Clear() {
		log.Fatal("expected a conflict for the overlapping slot")
	}

	ev2, err := svc.NewEvent(lecturer, busyEnd, busyEnd.Add(time.Hour),
		[]audience.TargetSpec{audience.WholeClass{ClassID: 7}}, nil)
	if err != nil {
		log.Fatalf("new adjacent event: %v", err)
	}
	plan, err = svc.PlanEvent(ctx, ev2)
	if err != nil {
		log.Fatalf("plan adjacent event: %v", err)
	}
	if !plan.Clear() || len(plan.Occurrences) != 1 {
		log.Fatalf("adjacent slot must be free: %+v", plan)
	}

	fmt.Println("✅ scheduling smoke test passed")
}
