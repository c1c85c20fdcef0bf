// services/identity.go - name resolution and join-time aliasing
package services

import (
	"sort"
	"strings"
	"time"

	"bowlingmanager/models"
)

// ExistingMember is the slice of a membership that alias resolution needs.
type ExistingMember struct {
	MembershipID uint
	RealName     string
	JoinedAt     time.Time
}

// AliasAssignment is one alias rewrite produced by ResolveJoinAliases.
type AliasAssignment struct {
	MembershipID uint
	Alias        string
}

// suffixForIndex yields A..Z, then AA, AB and so on.
func suffixForIndex(i int) string {
	s := ""
	for {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			return s
		}
	}
}

// ResolveJoinAliases handles the same-real-name collision when newName
// joins a team. Every existing member sharing that real name, in join
// order, gets the alias "Name A", "Name B", ... and the new joiner takes
// the next suffix. The whole set is re-suffixed on every colliding join,
// so a lone "Kim" with no alias becomes "Kim A" the moment a second Kim
// arrives as "Kim B". With no collision the new joiner gets no alias.
func ResolveJoinAliases(existing []ExistingMember, newName string) (updates []AliasAssignment, newAlias *string) {
	colliding := make([]ExistingMember, 0)
	for _, m := range existing {
		if m.RealName == newName {
			colliding = append(colliding, m)
		}
	}
	if len(colliding) == 0 {
		return nil, nil
	}

	sort.SliceStable(colliding, func(i, j int) bool {
		return colliding[i].JoinedAt.Before(colliding[j].JoinedAt)
	})

	for i, m := range colliding {
		updates = append(updates, AliasAssignment{
			MembershipID: m.MembershipID,
			Alias:        newName + " " + suffixForIndex(i),
		})
	}
	alias := newName + " " + suffixForIndex(len(colliding))
	return updates, &alias
}

// ResolveEntryName maps a raw name from a form, spreadsheet row, or AI
// extraction to a member id or a guest label. A membership matches when
// its alias or the underlying real name equals the trimmed input; no
// match degrades to a guest bucket rather than failing.
func ResolveEntryName(roster []models.TeamMember, raw string) (memberID *uint, guestName *string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, nil
	}
	for i := range roster {
		m := &roster[i]
		if m.Alias != nil && *m.Alias == name {
			id := m.UserID
			return &id, nil
		}
		if m.User != nil && m.User.Name == name {
			id := m.UserID
			return &id, nil
		}
	}
	return nil, &name
}

// BulkRow is one participant's line from a spreadsheet upload or AI
// extraction: a raw name and that day's scores, before identity
// resolution.
type BulkRow struct {
	MemberName string     `json:"member_name"`
	Scores     []int      `json:"scores"`
	GameDate   *time.Time `json:"game_date,omitempty"`
	Memo       *string    `json:"memo,omitempty"`
}

// ValidateBulkRows drops rows that cannot enter the score store: missing
// name, no scores, or any score outside 0..300. The rejected count is
// surfaced to the caller instead of silently coercing bad values.
func ValidateBulkRows(rows []BulkRow) (valid []BulkRow, rejected int) {
	for _, row := range rows {
		if strings.TrimSpace(row.MemberName) == "" || len(row.Scores) == 0 {
			rejected++
			continue
		}
		ok := true
		for _, s := range row.Scores {
			if !models.ValidScore(s) {
				ok = false
				break
			}
		}
		if !ok {
			rejected++
			continue
		}
		valid = append(valid, row)
	}
	return valid, rejected
}
