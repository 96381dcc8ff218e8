package schedule

import (
	"context"
	"errors"

	"campusplan.org/internal/audience"
	"campusplan.org/internal/directory"
)

// Relation is what an actor is to an item.
type Relation string

const (
	RelationAdmin    Relation = "admin"
	RelationCreator  Relation = "creator"
	RelationAudience Relation = "audience"
	RelationNone     Relation = "none"
)

// Evaluator combines role, audience membership and item state into action
// decisions. It holds no mutable state; every call is a pure function of its
// inputs plus directory lookups.
type Evaluator struct {
	resolver *audience.Resolver
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(resolver *audience.Resolver) (*Evaluator, error) {
	if resolver == nil {
		return nil, errors.New("schedule: audience resolver is required")
	}
	return &Evaluator{resolver: resolver}, nil
}

// relation computes the actor's relation to the item once per decision.
// Admin and creator are local equality checks; the directory is consulted
// only when both fail, since its lookups are the expensive path.
func (e *Evaluator) relation(ctx context.Context, actor directory.Identity, item Item) (Relation, error) {
	if actor.Role == directory.RoleAdmin {
		return RelationAdmin, nil
	}
	if creator := item.Creator(); actor.ID == creator.ID && actor.Role == creator.Role {
		return RelationCreator, nil
	}
	member, err := e.resolver.IsMemberOfAny(ctx, item.Audience(), actor)
	if err != nil {
		return RelationNone, err
	}
	if member {
		return RelationAudience, nil
	}
	return RelationNone, nil
}

// CanView reports whether the actor may read the item: creator, audience
// member or admin.
func (e *Evaluator) CanView(ctx context.Context, actor directory.Identity, item Item) (bool, error) {
	rel, err := e.relation(ctx, actor, item)
	if err != nil {
		return false, err
	}
	return rel != RelationNone, nil
}

// CanTransition decides a status change request. The transition graph is
// checked first: it is cheap, and it binds admins too (states cannot be
// skipped, and nothing leaves a terminal state). Only then is the relation
// computed; audience members drive the lifecycle, creators and outsiders do
// not.
func (e *Evaluator) CanTransition(ctx context.Context, actor directory.Identity, t Task, next Status) (Decision, error) {
	if !t.Status.Valid() || !next.Valid() || !CanMove(t.Status, next) {
		return Deny(ReasonInvalidTransition), nil
	}
	rel, err := e.relation(ctx, actor, t)
	if err != nil {
		return Decision{}, err
	}
	switch rel {
	case RelationAdmin, RelationAudience:
		return Allow(), nil
	default:
		return Deny(ReasonNotAudience), nil
	}
}

// CanMutateTargets decides reassignment / target edits: creator or admin
// only, and never on a task that has reached a terminal state.
func (e *Evaluator) CanMutateTargets(ctx context.Context, actor directory.Identity, item Item) (Decision, error) {
	if t, ok := item.(Task); ok && t.Status.Terminal() {
		return Deny(ReasonItemTerminal), nil
	}
	rel, err := e.relation(ctx, actor, item)
	if err != nil {
		return Decision{}, err
	}
	switch rel {
	case RelationAdmin, RelationCreator:
		return Allow(), nil
	default:
		return Deny(ReasonNotCreator), nil
	}
}

// CanDelete decides a soft delete: creator or admin.
func (e *Evaluator) CanDelete(ctx context.Context, actor directory.Identity, item Item) (Decision, error) {
	rel, err := e.relation(ctx, actor, item)
	if err != nil {
		return Decision{}, err
	}
	switch rel {
	case RelationAdmin, RelationCreator:
		return Allow(), nil
	default:
		return Deny(ReasonNotCreator), nil
	}
}

// CanForceDelete decides a hard delete: admin only. No directory lookup is
// needed; the check is a role flag.
func (e *Evaluator) CanForceDelete(actor directory.Identity) Decision {
	if actor.Role == directory.RoleAdmin {
		return Allow()
	}
	return Deny(ReasonNotCreator)
}

// CanRestore decides undeletion: admin only.
func (e *Evaluator) CanRestore(actor directory.Identity) Decision {
	return e.CanForceDelete(actor)
}
