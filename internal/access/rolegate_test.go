package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batilink/pkg/apierror"
)

func TestRoleGateAllowsDeclaredRole(t *testing.T) {
	gate := RequireRoles("entreprise")

	err := gate.Evaluate(context.Background(), Request{
		Principal: &Principal{ID: 1, Role: "entreprise"},
	})
	assert.NoError(t, err)
}

func TestRoleGateNormalizesCase(t *testing.T) {
	gate := RequireRoles("Entreprise")

	err := gate.Evaluate(context.Background(), Request{
		Principal: &Principal{ID: 1, Role: "  ENTREPRISE "},
	})
	assert.NoError(t, err)
}

func TestRoleGateDeniesOtherRole(t *testing.T) {
	gate := RequireRoles("entreprise")

	err := gate.Evaluate(context.Background(), Request{
		Principal: &Principal{ID: 1, Role: "customer"},
	})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)
}

func TestRoleGateAdminOverride(t *testing.T) {
	gate := RequireRoles("entreprise")

	err := gate.Evaluate(context.Background(), Request{
		Principal: &Principal{ID: 1, Role: "admin"},
	})
	assert.NoError(t, err)
}

func TestRoleGateEmptySetAllowsAnyone(t *testing.T) {
	gate := RequireRoles()

	assert.NoError(t, gate.Evaluate(context.Background(), Request{Principal: &Principal{ID: 1, Role: "customer"}}))
	assert.NoError(t, gate.Evaluate(context.Background(), Request{}))
}

func TestRoleGateMissingRoleDenied(t *testing.T) {
	gate := RequireRoles("customer")

	for name, req := range map[string]Request{
		"nil principal": {},
		"blank role":    {Principal: &Principal{ID: 1, Role: "   "}},
	} {
		err := gate.Evaluate(context.Background(), req)
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr, name)
		assert.Equal(t, apierror.CodeForbidden, apiErr.Code, name)
	}
}
