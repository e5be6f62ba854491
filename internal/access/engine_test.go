package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batilink/internal/model"
	"batilink/pkg/apierror"
)

type stubLookup struct {
	fields map[int64]map[string]int64
	err    error
}

func (s *stubLookup) OwnerFields(_ context.Context, _ Resource, id int64) (map[string]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	fields, ok := s.fields[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return fields, nil
}

func projectPolicy() Policy {
	return Policy{
		AllowOwner:  true,
		OwnerParam:  "id",
		OwnerFields: []string{FieldCustomerID, FieldEntrepriseID},
		Resource:    ResourceProject,
	}
}

func evaluate(t *testing.T, policy Policy, lookup OwnerLookup, principal *Principal, params map[string]string) error {
	t.Helper()
	gate := NewResourceGate(policy, lookup)
	return gate.Evaluate(context.Background(), Request{Principal: principal, Params: params})
}

func TestEngineZeroPolicyAllows(t *testing.T) {
	err := evaluate(t, Policy{}, nil, nil, nil)
	assert.NoError(t, err)
}

func TestEngineNilPrincipalUnauthenticated(t *testing.T) {
	err := evaluate(t, projectPolicy(), &stubLookup{}, nil, map[string]string{"id": "1"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeUnauthenticated, apiErr.Code)
}

func TestEngineAdminBypassesOwnership(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{5: {FieldCustomerID: 99}}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 1, Role: "admin"}, map[string]string{"id": "5"})
	assert.NoError(t, err)
}

func TestEngineRoleMembershipAllowsWithoutLookup(t *testing.T) {
	policy := projectPolicy()
	policy.AllowedRoles = []string{"entreprise"}
	// Lookup would fail if consulted.
	lookup := &stubLookup{err: errors.New("must not be called")}

	err := evaluate(t, policy, lookup, &Principal{ID: 1, Role: "entreprise"}, map[string]string{"id": "5"})
	assert.NoError(t, err)
}

func TestEngineOwnerByCustomerField(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{5: {FieldCustomerID: 7}}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 7, Role: "customer"}, map[string]string{"id": "5"})
	assert.NoError(t, err)
}

func TestEngineOwnerByEntrepriseField(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{5: {FieldCustomerID: 7, FieldEntrepriseID: 8}}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 8, Role: "entreprise"}, map[string]string{"id": "5"})
	assert.NoError(t, err)
}

func TestEngineNonOwnerForbidden(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{5: {FieldCustomerID: 7}}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 9, Role: "customer"}, map[string]string{"id": "5"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)
}

func TestEngineMissingResourceMaskedAsForbidden(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 9, Role: "customer"}, map[string]string{"id": "5"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)
}

func TestEngineMissingParamIsConfigurationError(t *testing.T) {
	lookup := &stubLookup{}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 9, Role: "customer"}, map[string]string{})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeConfiguration, apiErr.Code)
	assert.Equal(t, 403, apiErr.HTTPStatus)
}

func TestEngineMalformedIDDenied(t *testing.T) {
	lookup := &stubLookup{fields: map[int64]map[string]int64{5: {FieldCustomerID: 9}}}
	err := evaluate(t, projectPolicy(), lookup, &Principal{ID: 9, Role: "customer"}, map[string]string{"id": "abc"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)
}

func TestEngineSelfOwnership(t *testing.T) {
	policy := Policy{AllowOwner: true, Resource: ResourceUser}

	err := evaluate(t, policy, nil, &Principal{ID: 3, Role: "customer"}, map[string]string{"id": "3"})
	assert.NoError(t, err)

	err = evaluate(t, policy, nil, &Principal{ID: 3, Role: "customer"}, map[string]string{"id": "4"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)
}

func TestChainFirstDenyWins(t *testing.T) {
	allowAll := RequireRoles()
	denyCustomer := RequireRoles("entreprise")

	chain := Chain{allowAll, denyCustomer}
	err := chain.Evaluate(context.Background(), Request{Principal: &Principal{ID: 1, Role: "customer"}})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeForbidden, apiErr.Code)

	err = chain.Evaluate(context.Background(), Request{Principal: &Principal{ID: 1, Role: "entreprise"}})
	assert.NoError(t, err)
}
