package access

import (
	"context"
	"strings"

	"batilink/pkg/apierror"
)

// RoleGate allows a request when the principal's role is in the declared
// set. The admin role passes unconditionally. An empty set means the gate
// declares nothing and allows everyone.
type RoleGate struct {
	required []string
}

func RequireRoles(roles ...string) RoleGate {
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized = append(normalized, normalizeRole(role))
	}
	return RoleGate{required: normalized}
}

func (g RoleGate) Evaluate(_ context.Context, req Request) error {
	if len(g.required) == 0 {
		return nil
	}

	if req.Principal == nil || strings.TrimSpace(req.Principal.Role) == "" {
		return apierror.Forbidden("access denied: role not defined")
	}

	role := normalizeRole(req.Principal.Role)
	if role == RoleAdminNormalized {
		return nil
	}

	for _, required := range g.required {
		if role == required {
			return nil
		}
	}

	return apierror.Forbidden("access denied: requires one of " + strings.Join(g.required, ", "))
}

// RoleAdminNormalized is the normalized form of the administrative role
// checked by the superuser override.
const RoleAdminNormalized = "admin"
