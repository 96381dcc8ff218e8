package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusplan.org/internal/audience"
	"campusplan.org/internal/audit"
	"campusplan.org/internal/directory"
	"campusplan.org/internal/ids"
	"campusplan.org/internal/interval"
	"campusplan.org/internal/obs"
	"campusplan.org/internal/recurrence"
)

// ConflictPolicy decides what happens when some occurrences of a recurring
// request collide and others are free.
type ConflictPolicy string

const (
	// RejectSeries fails the whole request on the first colliding
	// occurrence.
	RejectSeries ConflictPolicy = "reject_series"
	// SkipOccurrences reports colliding occurrences and returns the free
	// remainder for persistence.
	SkipOccurrences ConflictPolicy = "skip_occurrences"
)

// Valid reports whether p is a known policy.
func (p ConflictPolicy) Valid() bool {
	return p == RejectSeries || p == SkipOccurrences
}

// Service composes the audience resolver, authorization evaluator,
// recurrence expander and conflict detector into the operations the CRUD
// layer calls. It performs no writes: callers persist only after an Allow
// or a conflict-free plan, and re-validate against fresh state at commit
// time.
type Service struct {
	resolver  *audience.Resolver
	evaluator *Evaluator
	detector  *interval.Detector
	policy    ConflictPolicy
	now       func() time.Time
}

// Option configures Service behavior.
type Option func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithConflictPolicy selects the partial-conflict behavior for recurring
// requests.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(s *Service) error {
		if !p.Valid() {
			return fmt.Errorf("%w: conflict policy %q", ErrInvalidInput, p)
		}
		s.policy = p
		return nil
	}
}

// NewService wires the core against the two stateful collaborators.
func NewService(gw directory.Gateway, store interval.Store, opts ...Option) (*Service, error) {
	resolver, err := audience.NewResolver(gw)
	if err != nil {
		return nil, err
	}
	evaluator, err := NewEvaluator(resolver)
	if err != nil {
		return nil, err
	}
	detector, err := interval.NewDetector(store)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		resolver:  resolver,
		evaluator: evaluator,
		detector:  detector,
		policy:    RejectSeries,
		now:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// NewTask validates and shapes a new work item. Only lecturers and admins
// create tasks, and the target set must never be empty.
func (s *Service) NewTask(actor directory.Identity, deadline *time.Time, targets []audience.TargetSpec) (Task, error) {
	if actor.Role != directory.RoleLecturer && actor.Role != directory.RoleAdmin {
		return Task{}, fmt.Errorf("%w: role %s cannot create tasks", ErrInvalidInput, actor.Role)
	}
	if len(targets) == 0 {
		return Task{}, fmt.Errorf("%w: target set must not be empty", ErrInvalidInput)
	}
	return Task{
		ID:          ids.New(),
		CreatorID:   actor.ID,
		CreatorRole: actor.Role,
		Status:      StatusPending,
		Deadline:    deadline,
		Targets:     targets,
	}, nil
}

// NewEvent validates and shapes a new calendar event. Recurrence validation
// happens up front so a malformed spec is rejected before any external call.
func (s *Service) NewEvent(actor directory.Identity, start, end time.Time, participants []audience.TargetSpec, rec *recurrence.Spec) (CalendarEvent, error) {
	if actor.Role != directory.RoleLecturer && actor.Role != directory.RoleAdmin {
		return CalendarEvent{}, fmt.Errorf("%w: role %s cannot create events", ErrInvalidInput, actor.Role)
	}
	if len(participants) == 0 {
		return CalendarEvent{}, fmt.Errorf("%w: participant set must not be empty", ErrInvalidInput)
	}
	anchor := interval.Interval{Start: start, End: end}
	if err := anchor.Validate(); err != nil {
		return CalendarEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if rec != nil {
		if err := rec.Validate(start); err != nil {
			return CalendarEvent{}, err
		}
	}
	return CalendarEvent{
		ID:           ids.New(),
		CreatorID:    actor.ID,
		CreatorRole:  actor.Role,
		Start:        start,
		End:          end,
		Participants: participants,
		Recurrence:   rec,
	}, nil
}

// CanView reports whether the actor may read the item.
func (s *Service) CanView(ctx context.Context, actor directory.Identity, item Item) (bool, error) {
	ok, err := s.evaluator.CanView(ctx, actor, item)
	if err != nil {
		return false, err
	}
	outcome := "allow"
	if !ok {
		outcome = "deny_not_audience"
	}
	obs.RecordDecision("view", outcome)
	return ok, nil
}

// CanTransition decides a task status change.
func (s *Service) CanTransition(ctx context.Context, actor directory.Identity, t Task, next Status) (Decision, error) {
	d, err := s.evaluator.CanTransition(ctx, actor, t, next)
	if err != nil {
		return Decision{}, err
	}
	obs.RecordDecision("transition", d.Outcome())
	if d.Denied() {
		_ = audit.LogEvent(ctx, "transition_denied", map[string]any{
			"task_id": t.ID,
			"from":    string(t.Status),
			"to":      string(next),
			"reason":  string(d.Reason),
		})
	}
	return d, nil
}

// CanMutateTargets decides reassignment / target edits.
func (s *Service) CanMutateTargets(ctx context.Context, actor directory.Identity, item Item) (Decision, error) {
	d, err := s.evaluator.CanMutateTargets(ctx, actor, item)
	if err != nil {
		return Decision{}, err
	}
	obs.RecordDecision("mutate_targets", d.Outcome())
	return d, nil
}

// CanDelete decides a soft delete.
func (s *Service) CanDelete(ctx context.Context, actor directory.Identity, item Item) (Decision, error) {
	d, err := s.evaluator.CanDelete(ctx, actor, item)
	if err != nil {
		return Decision{}, err
	}
	obs.RecordDecision("delete", d.Outcome())
	return d, nil
}

// CanForceDelete decides a hard delete (admin only).
func (s *Service) CanForceDelete(actor directory.Identity) Decision {
	d := s.evaluator.CanForceDelete(actor)
	obs.RecordDecision("force_delete", d.Outcome())
	return d
}

// CanRestore decides undeletion (admin only).
func (s *Service) CanRestore(actor directory.Identity) Decision {
	d := s.evaluator.CanRestore(actor)
	obs.RecordDecision("restore", d.Outcome())
	return d
}

// EffectiveStatus projects a task's read-time status using the service
// clock.
func (s *Service) EffectiveStatus(t Task) Status {
	return EffectiveStatus(t, s.now())
}

// ResolveAudience materializes the union of the given specs, deduplicated,
// for notification fan-out. Ordering follows the spec order, members within
// a spec in directory order.
func (s *Service) ResolveAudience(ctx context.Context, specs []audience.TargetSpec) ([]directory.Identity, error) {
	seen := make(map[directory.Identity]struct{})
	var out []directory.Identity
	for _, spec := range specs {
		members, err := s.resolver.Members(ctx, spec)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// ExpandRecurrence materializes the occurrence sequence for an anchor and
// spec. Pure: no external calls, same inputs always give the same sequence.
func (s *Service) ExpandRecurrence(anchor interval.Interval, spec recurrence.Spec) ([]interval.Interval, error) {
	occ, err := recurrence.Expand(anchor, spec)
	if err != nil {
		return nil, err
	}
	obs.ObserveExpansion(len(occ))
	return occ, nil
}

// CheckConflicts returns the participant's committed intervals overlapping
// the candidate.
func (s *Service) CheckConflicts(ctx context.Context, participant directory.Identity, candidate interval.Interval) ([]interval.Committed, error) {
	found, err := s.detector.FindConflicts(ctx, participant, candidate)
	if err != nil {
		return nil, err
	}
	obs.RecordConflictCheck(len(found) > 0)
	return found, nil
}

// OccurrenceConflict reports one colliding occurrence for one participant.
type OccurrenceConflict struct {
	Occurrence  interval.Interval
	Participant directory.Identity
	Existing    []interval.Committed
}

// Plan is the outcome of planning an event placement. Occurrences holds
// what may be persisted under the active policy; Conflicts is diagnostic
// and, under RejectSeries, the grounds for refusing the whole request.
type Plan struct {
	Occurrences []interval.Interval
	Conflicts   []OccurrenceConflict
}

// Clear reports whether the plan found no collisions at all.
func (p Plan) Clear() bool { return len(p.Conflicts) == 0 }

// PlanEvent runs the full placement pipeline for an event: validate, expand
// the series, resolve the participant set once, then test every occurrence
// against every participant's committed schedule. Participant lookups run
// concurrently; the context cancels them cooperatively. The configured
// policy decides whether a partially colliding series keeps its free
// occurrences.
func (s *Service) PlanEvent(ctx context.Context, ev CalendarEvent) (Plan, error) {
	anchor := interval.Interval{Start: ev.Start, End: ev.End}
	if err := anchor.Validate(); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(ev.Participants) == 0 {
		return Plan{}, fmt.Errorf("%w: participant set must not be empty", ErrInvalidInput)
	}

	occurrences := []interval.Interval{anchor}
	if ev.Recurrence != nil {
		expanded, err := s.ExpandRecurrence(anchor, *ev.Recurrence)
		if err != nil {
			return Plan{}, err
		}
		occurrences = expanded
	}

	participants, err := s.ResolveAudience(ctx, ev.Participants)
	if err != nil {
		return Plan{}, err
	}

	// One committed-schedule fetch per participant, in parallel; each
	// occurrence is then tested in memory against that snapshot.
	type result struct {
		conflicts []OccurrenceConflict
		err       error
	}
	results := make([]result, len(participants))
	var wg sync.WaitGroup
	for i, p := range participants {
		wg.Add(1)
		go func(i int, p directory.Identity) {
			defer wg.Done()
			perOccurrence, err := s.detector.FindConflictsBatch(ctx, p, occurrences)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			var conflicts []OccurrenceConflict
			for j, existing := range perOccurrence {
				if len(existing) > 0 {
					conflicts = append(conflicts, OccurrenceConflict{
						Occurrence:  occurrences[j],
						Participant: p,
						Existing:    existing,
					})
				}
			}
			results[i] = result{conflicts: conflicts}
		}(i, p)
	}
	wg.Wait()

	var plan Plan
	colliding := make(map[time.Time]bool)
	for _, res := range results {
		if res.err != nil {
			return Plan{}, res.err
		}
		for _, c := range res.conflicts {
			plan.Conflicts = append(plan.Conflicts, c)
			colliding[c.Occurrence.Start] = true
		}
	}
	obs.RecordConflictCheck(len(plan.Conflicts) > 0)

	switch {
	case plan.Clear():
		plan.Occurrences = occurrences
	case s.policy == SkipOccurrences:
		for _, occ := range occurrences {
			if !colliding[occ.Start] {
				plan.Occurrences = append(plan.Occurrences, occ)
			}
		}
	default: // RejectSeries: one collision refuses the series.
	}

	if !plan.Clear() {
		_ = audit.LogEvent(ctx, "event_conflicts", map[string]any{
			"event_id":  ev.ID,
			"conflicts": len(plan.Conflicts),
			"policy":    string(s.policy),
		})
	}
	return plan, nil
}
