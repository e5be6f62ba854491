package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"batilink/internal/model"
	"batilink/pkg/apierror"
)

// OwnerLookup fetches the owner-candidate fields of a resource, keyed by
// the field names the policies reference. A missing resource returns
// model.ErrNotFound.
type OwnerLookup interface {
	OwnerFields(ctx context.Context, resource Resource, id int64) (map[string]int64, error)
}

// ResourceGate evaluates one declared Policy against a request,
// consulting the lookup when ownership requires fetching the resource.
type ResourceGate struct {
	policy Policy
	lookup OwnerLookup
}

func NewResourceGate(policy Policy, lookup OwnerLookup) ResourceGate {
	return ResourceGate{policy: policy, lookup: lookup}
}

// Evaluate applies the decision order: no policy allows, no principal is
// unauthenticated, role membership allows, then ownership. A resource the
// lookup cannot find denies with FORBIDDEN so existence never leaks to an
// unauthorized caller.
func (g ResourceGate) Evaluate(ctx context.Context, req Request) error {
	if g.policy.Zero() {
		return nil
	}

	if req.Principal == nil {
		return apierror.Unauthenticated("authentication required for this resource")
	}

	role := normalizeRole(req.Principal.Role)
	if role == RoleAdminNormalized {
		return nil
	}
	for _, allowed := range g.policy.AllowedRoles {
		if role == normalizeRole(allowed) {
			return nil
		}
	}

	if g.policy.AllowOwner {
		allowed, err := g.ownerAllows(ctx, req)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}

	return apierror.Forbidden("insufficient rights for this resource")
}

func (g ResourceGate) ownerAllows(ctx context.Context, req Request) (bool, error) {
	param := g.policy.OwnerParam
	if param == "" {
		param = "id"
	}

	raw, ok := req.Params[param]
	if !ok || raw == "" {
		return false, apierror.Configuration(param)
	}

	resourceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// A malformed id can never match an owner; fall through to the
		// final denial rather than reveal anything about the parameter.
		return false, nil
	}

	if g.policy.Resource == "" || g.policy.Resource == ResourceUser {
		return req.Principal.ID == resourceID, nil
	}

	if len(g.policy.OwnerFields) == 0 {
		return false, nil
	}

	fields, err := g.lookup.OwnerFields(ctx, g.policy.Resource, resourceID)
	if errors.Is(err, model.ErrNotFound) {
		// Masked: absence must look the same as lack of rights.
		return false, apierror.Forbidden("insufficient rights for this resource")
	}
	if err != nil {
		return false, fmt.Errorf("resolve resource owner: %w", err)
	}

	for _, field := range g.policy.OwnerFields {
		if owner, ok := fields[field]; ok && owner == req.Principal.ID {
			return true, nil
		}
	}

	return false, nil
}
