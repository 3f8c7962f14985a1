package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeMappingSource struct {
	rules map[string][]domain.Division
	err   error
}

func (f *fakeMappingSource) ListActiveDivisionsByCategory(_ context.Context, category string) ([]domain.Division, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules[category], nil
}

type fakeDirectory struct {
	admins      map[domain.Division][]domain.User
	superAdmins []domain.User
	err         error
}

func (f *fakeDirectory) ListActiveAdminsByDivision(_ context.Context, division domain.Division) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.admins[division], nil
}

func (f *fakeDirectory) ListActiveSuperAdmins(_ context.Context) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.superAdmins, nil
}

func admin(id string, division domain.Division) domain.User {
	return domain.User{ID: id, Name: "admin " + id, Role: domain.RoleAdmin, Division: division, Active: true}
}

func superAdmin(id string, division domain.Division) domain.User {
	return domain.User{ID: id, Name: "super " + id, Role: domain.RoleSuperAdmin, Division: division, Active: true}
}

func newTestResolver(mappings *fakeMappingSource, directory *fakeDirectory) *Resolver {
	return NewResolver(mappings, directory, domain.DivisionIT, zap.NewNop())
}

func TestMergeTargets_SubmitterAlwaysFirst(t *testing.T) {
	targets := MergeTargets("SALES", []domain.Division{domain.DivisionIT}, domain.DivisionIT)

	require.Len(t, targets, 2)
	assert.Equal(t, Target{Division: "SALES", Reason: domain.ReasonUserDivision}, targets[0])
	assert.Equal(t, Target{Division: domain.DivisionIT, Reason: domain.ReasonNLPCategory}, targets[1])
}

func TestMergeTargets_FallbackWhenNoMapping(t *testing.T) {
	targets := MergeTargets("HR", nil, domain.DivisionIT)

	require.Len(t, targets, 2)
	assert.Equal(t, Target{Division: "HR", Reason: domain.ReasonUserDivision}, targets[0])
	assert.Equal(t, Target{Division: domain.DivisionIT, Reason: domain.ReasonNLPCategory}, targets[1])
}

func TestMergeTargets_DuplicateDivisionKeepsFirstReason(t *testing.T) {
	targets := MergeTargets(domain.DivisionIT, []domain.Division{domain.DivisionIT, domain.DivisionHR}, domain.DivisionIT)

	require.Len(t, targets, 2)
	assert.Equal(t, domain.ReasonUserDivision, targets[0].Reason)
	assert.Equal(t, domain.DivisionIT, targets[0].Division)
	assert.Equal(t, domain.DivisionHR, targets[1].Division)
}

func TestMergeTargets_NoDuplicateDivisions(t *testing.T) {
	mapped := []domain.Division{domain.DivisionIT, domain.DivisionHR, domain.DivisionIT, domain.DivisionHR}
	targets := MergeTargets("SALES", mapped, domain.DivisionIT)

	seen := map[domain.Division]bool{}
	for _, target := range targets {
		assert.False(t, seen[target.Division], "division %s appears twice", target.Division)
		seen[target.Division] = true
	}
}

func TestResolveTargets_MappingErrorFallsBack(t *testing.T) {
	resolver := newTestResolver(
		&fakeMappingSource{err: errors.New("connection refused")},
		&fakeDirectory{},
	)

	targets := resolver.ResolveTargets(context.Background(), "HR", "IT")

	require.Len(t, targets, 2)
	assert.Equal(t, domain.DivisionIT, targets[1].Division)
	assert.Equal(t, domain.ReasonNLPCategory, targets[1].Reason)
}

func TestResolveRecipients_DedupByAdminIdentity(t *testing.T) {
	// a2 administers both the submitter division and the mapped division.
	directory := &fakeDirectory{
		admins: map[domain.Division][]domain.User{
			"SALES":          {admin("a1", "SALES"), admin("a2", "SALES")},
			domain.DivisionIT: {admin("a2", "SALES"), admin("a3", domain.DivisionIT)},
		},
	}
	resolver := newTestResolver(
		&fakeMappingSource{rules: map[string][]domain.Division{"IT": {domain.DivisionIT}}},
		directory,
	)

	recipients, err := resolver.ResolveRecipients(context.Background(), "SALES", "IT")
	require.NoError(t, err)

	ids := map[string]int{}
	for _, r := range recipients {
		ids[r.Admin.ID]++
	}
	for id, count := range ids {
		assert.Equal(t, 1, count, "admin %s notified more than once", id)
	}
	require.Len(t, recipients, 3)
	assert.Equal(t, domain.ReasonUserDivision, recipients[0].Reason)
	assert.Equal(t, domain.ReasonUserDivision, recipients[1].Reason) // a2 keeps first-seen reason
	assert.Equal(t, domain.ReasonNLPCategory, recipients[2].Reason)
}

func TestResolveRecipients_SuperAdminsAlwaysTaggedSuperAdmin(t *testing.T) {
	// The super-admin's division matches the submitter's division; they must
	// still be tagged super_admin because division expansion only selects
	// admin-role accounts.
	directory := &fakeDirectory{
		admins: map[domain.Division][]domain.User{
			"HR": {admin("a1", "HR")},
		},
		superAdmins: []domain.User{superAdmin("s1", "HR")},
	}
	resolver := newTestResolver(&fakeMappingSource{}, directory)

	recipients, err := resolver.ResolveRecipients(context.Background(), "HR", "General")
	require.NoError(t, err)

	var found bool
	for _, r := range recipients {
		if r.Admin.ID == "s1" {
			found = true
			assert.Equal(t, domain.ReasonSuperAdmin, r.Reason)
		}
	}
	assert.True(t, found, "super admin missing from recipients")
}

func TestResolveRecipients_EmptyDivisionContributesNothing(t *testing.T) {
	directory := &fakeDirectory{
		admins:      map[domain.Division][]domain.User{},
		superAdmins: []domain.User{superAdmin("s1", domain.DivisionGeneral)},
	}
	resolver := newTestResolver(
		&fakeMappingSource{rules: map[string][]domain.Division{"IT": {domain.DivisionIT}}},
		directory,
	)

	recipients, err := resolver.ResolveRecipients(context.Background(), "SALES", "IT")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "s1", recipients[0].Admin.ID)
}

func TestResolveTargets_ScenarioSalesToIT(t *testing.T) {
	resolver := newTestResolver(
		&fakeMappingSource{rules: map[string][]domain.Division{"IT": {domain.DivisionIT}}},
		&fakeDirectory{},
	)

	targets := resolver.ResolveTargets(context.Background(), "SALES", "IT")

	require.Equal(t, []Target{
		{Division: "SALES", Reason: domain.ReasonUserDivision},
		{Division: domain.DivisionIT, Reason: domain.ReasonNLPCategory},
	}, targets)
}

func TestPrimaryTarget(t *testing.T) {
	withMapping := []Target{
		{Division: "SALES", Reason: domain.ReasonUserDivision},
		{Division: domain.DivisionIT, Reason: domain.ReasonNLPCategory},
	}
	assert.Equal(t, domain.DivisionIT, PrimaryTarget(withMapping))

	onlySubmitter := []Target{{Division: "SALES", Reason: domain.ReasonUserDivision}}
	assert.Equal(t, domain.Division("SALES"), PrimaryTarget(onlySubmitter))
}

func TestDivisions(t *testing.T) {
	targets := []Target{
		{Division: "HR", Reason: domain.ReasonUserDivision},
		{Division: domain.DivisionIT, Reason: domain.ReasonNLPCategory},
	}
	assert.Equal(t, []domain.Division{"HR", domain.DivisionIT}, Divisions(targets))
}
