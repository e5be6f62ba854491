// Package access implements request-level authorization as small
// composable evaluators: a role gate and an ownership-aware resource
// gate. Routes attach any combination of the two; a chain runs them in
// order and fails closed on the first denial.
package access

import (
	"context"
	"strings"
)

// Resource selects which lookup resolves owner candidates for a policy.
type Resource string

const (
	ResourceUser    Resource = "user"
	ResourceProject Resource = "project"
	ResourceTask    Resource = "task"
	ResourceAddress Resource = "address"
)

// Owner-candidate field names returned by lookups, matching the columns
// they are read from.
const (
	FieldCustomerID   = "customer_id"
	FieldEntrepriseID = "entreprise_id"
	FieldUserID       = "user_id"
)

// Policy declares who may perform an operation: members of AllowedRoles,
// or (when AllowOwner is set) the principal owning the resource whose id
// arrives in the route parameter OwnerParam. OwnerFields names the
// resource fields accepted as owners; an empty Resource or ResourceUser
// means the route parameter is itself a user id compared directly against
// the principal.
type Policy struct {
	AllowedRoles []string
	AllowOwner   bool
	OwnerParam   string
	OwnerFields  []string
	Resource     Resource
}

// Zero reports whether no restriction is declared at all.
func (p Policy) Zero() bool {
	return len(p.AllowedRoles) == 0 && !p.AllowOwner
}

// Principal is the authenticated caller, derived from verified access
// claims.
type Principal struct {
	ID   int64
	Role string
}

// Request is the evaluator input: who is calling and the route parameters
// of the operation.
type Request struct {
	Principal *Principal
	Params    map[string]string
}

// Evaluator decides one policy for one request. A nil return allows; a
// typed error denies with its reason.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) error
}

// Chain runs evaluators in order and stops at the first denial. The
// layers stay independent: each enforces its own policy in full.
type Chain []Evaluator

func (c Chain) Evaluate(ctx context.Context, req Request) error {
	for _, e := range c {
		if err := e.Evaluate(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
