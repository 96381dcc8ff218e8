package audience

import (
	"context"
	"errors"
	"fmt"

	"campusplan.org/internal/directory"
)

var (
	ErrInvalidSpec = errors.New("audience: invalid target spec")
)

// Resolver expands and tests TargetSpecs against the directory.
//
// Membership tests never materialize a roster when a single lookup will do:
// DirectUser is an equality check, WholeClass is one IsInClass call, and
// OrgWide is a role check with no directory traffic at all.
type Resolver struct {
	gw directory.Gateway
}

// NewResolver constructs a Resolver.
func NewResolver(gw directory.Gateway) (*Resolver, error) {
	if gw == nil {
		return nil, errors.New("audience: directory gateway is required")
	}
	return &Resolver{gw: gw}, nil
}

// Members materializes the recipient set of one spec. The roster is read at
// call time; enrollment may change between calls, so callers must not cache
// the result across requests. A class that no longer exists resolves empty.
func (r *Resolver) Members(ctx context.Context, spec TargetSpec) ([]directory.Identity, error) {
	switch s := spec.(type) {
	case DirectUser:
		return []directory.Identity{{ID: s.UserID, Role: s.Role}}, nil
	case WholeClass:
		roster, err := r.gw.GetClassRoster(ctx, s.ClassID)
		if err != nil {
			return nil, fmt.Errorf("resolve class %d: %w", s.ClassID, err)
		}
		out := make([]directory.Identity, 0, len(roster))
		for _, id := range roster {
			out = append(out, directory.Identity{ID: id, Role: directory.RoleStudent})
		}
		return out, nil
	case OrgWide:
		students, err := r.gw.ListStudents(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve org population: %w", err)
		}
		out := make([]directory.Identity, 0, len(students))
		for _, id := range students {
			out = append(out, directory.Identity{ID: id, Role: directory.RoleStudent})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSpec, spec)
	}
}

// IsMember reports whether who belongs to the audience named by spec.
func (r *Resolver) IsMember(ctx context.Context, spec TargetSpec, who directory.Identity) (bool, error) {
	switch s := spec.(type) {
	case DirectUser:
		return who.ID == s.UserID && who.Role == s.Role, nil
	case WholeClass:
		// Class rosters hold students only; skip the lookup for anyone else.
		if who.Role != directory.RoleStudent {
			return false, nil
		}
		in, err := r.gw.IsInClass(ctx, who.ID, s.ClassID)
		if err != nil {
			return false, fmt.Errorf("membership class %d: %w", s.ClassID, err)
		}
		return in, nil
	case OrgWide:
		return who.Role == directory.RoleStudent, nil
	default:
		return false, fmt.Errorf("%w: %T", ErrInvalidSpec, spec)
	}
}

// IsMemberOfAny is a short-circuiting OR over IsMember. An empty spec set
// grants access to no one.
func (r *Resolver) IsMemberOfAny(ctx context.Context, specs []TargetSpec, who directory.Identity) (bool, error) {
	for _, spec := range specs {
		ok, err := r.IsMember(ctx, spec, who)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
