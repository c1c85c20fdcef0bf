package services

import (
	"testing"
	"time"

	"bowlingmanager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJoinAliasesNoCollision(t *testing.T) {
	existing := []ExistingMember{
		{MembershipID: 1, RealName: "Park", JoinedAt: time.Now()},
	}
	updates, alias := ResolveJoinAliases(existing, "Kim")
	assert.Empty(t, updates)
	assert.Nil(t, alias)
}

func TestResolveJoinAliasesCollision(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)

	// Second Kim joins: the lone existing Kim is re-suffixed too
	existing := []ExistingMember{
		{MembershipID: 10, RealName: "Kim", JoinedAt: t1},
	}
	updates, alias := ResolveJoinAliases(existing, "Kim")
	require.Len(t, updates, 1)
	assert.Equal(t, uint(10), updates[0].MembershipID)
	assert.Equal(t, "Kim A", updates[0].Alias)
	require.NotNil(t, alias)
	assert.Equal(t, "Kim B", *alias)

	// Third Kim: suffixes follow join order regardless of slice order
	existing = []ExistingMember{
		{MembershipID: 20, RealName: "Kim", JoinedAt: t2},
		{MembershipID: 10, RealName: "Kim", JoinedAt: t1},
		{MembershipID: 30, RealName: "Park", JoinedAt: t1},
	}
	updates, alias = ResolveJoinAliases(existing, "Kim")
	require.Len(t, updates, 2)
	assert.Equal(t, AliasAssignment{MembershipID: 10, Alias: "Kim A"}, updates[0])
	assert.Equal(t, AliasAssignment{MembershipID: 20, Alias: "Kim B"}, updates[1])
	require.NotNil(t, alias)
	assert.Equal(t, "Kim C", *alias)
}

func TestSuffixForIndex(t *testing.T) {
	assert.Equal(t, "A", suffixForIndex(0))
	assert.Equal(t, "Z", suffixForIndex(25))
	assert.Equal(t, "AA", suffixForIndex(26))
	assert.Equal(t, "AB", suffixForIndex(27))
}

func TestResolveEntryName(t *testing.T) {
	alias := "Kim A"
	team := []models.TeamMember{
		{UserID: 1, Alias: &alias, User: &models.User{ID: 1, Name: "Kim"}},
		{UserID: 2, User: &models.User{ID: 2, Name: "Lee"}},
	}

	// Alias match
	id, guest := ResolveEntryName(team, "Kim A")
	require.NotNil(t, id)
	assert.Equal(t, uint(1), *id)
	assert.Nil(t, guest)

	// Real-name match
	id, guest = ResolveEntryName(team, " Lee ")
	require.NotNil(t, id)
	assert.Equal(t, uint(2), *id)
	assert.Nil(t, guest)

	// Unknown names degrade to guest, never fail
	id, guest = ResolveEntryName(team, "Visitor")
	assert.Nil(t, id)
	require.NotNil(t, guest)
	assert.Equal(t, "Visitor", *guest)

	// Blank input resolves to neither
	id, guest = ResolveEntryName(team, "   ")
	assert.Nil(t, id)
	assert.Nil(t, guest)
}

func TestValidateBulkRows(t *testing.T) {
	rows := []BulkRow{
		{MemberName: "Kim", Scores: []int{180, 210}},
		{MemberName: "", Scores: []int{150}},        // no name
		{MemberName: "Lee", Scores: nil},            // no scores
		{MemberName: "Park", Scores: []int{301}},    // out of range
		{MemberName: "Choi", Scores: []int{0, 300}}, // boundary values are legal
	}

	valid, rejected := ValidateBulkRows(rows)
	assert.Equal(t, 3, rejected)
	require.Len(t, valid, 2)
	assert.Equal(t, "Kim", valid[0].MemberName)
	assert.Equal(t, "Choi", valid[1].MemberName)
}
