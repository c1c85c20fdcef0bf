package services

import (
	"testing"

	"bowlingmanager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestRow(id uint, name string, score int) models.Score {
	return models.Score{ID: id, GuestName: &name, Score: score}
}

func memberRow(id, userID uint, score int) models.Score {
	uid := userID
	return models.Score{ID: id, UserID: &uid, Score: score}
}

func countOwnedBy(records []models.Score, userID uint) int {
	n := 0
	for _, r := range records {
		if r.UserID != nil && *r.UserID == userID {
			n++
		}
	}
	return n
}

func TestMergeGuestScores(t *testing.T) {
	records := []models.Score{
		guestRow(1, "민수", 180),
		guestRow(2, "민수", 200),
		guestRow(3, "민수", 150),
		memberRow(4, 7, 210),
		guestRow(5, "철수", 190),
	}

	ids := mergeGuestScores(records, "민수", 7)

	// exactly the guest's rows move, member gains that many
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids)
	assert.Equal(t, 4, countOwnedBy(records, 7))
	assert.Empty(t, guestScoreIDs(records, "민수"))

	// the unrelated guest is untouched
	assert.Len(t, guestScoreIDs(records, "철수"), 1)

	for _, r := range records[:3] {
		require.NotNil(t, r.UserID)
		assert.Equal(t, uint(7), *r.UserID)
		assert.Nil(t, r.GuestName)
	}
}

func TestMergeGuestScoresRerunIsNoOp(t *testing.T) {
	records := []models.Score{
		guestRow(1, "민수", 180),
		guestRow(2, "민수", 200),
	}

	first := mergeGuestScores(records, "민수", 7)
	require.Len(t, first, 2)

	second := mergeGuestScores(records, "민수", 7)
	assert.Empty(t, second)
	assert.Equal(t, 2, countOwnedBy(records, 7))
}

func TestGuestScoreIDs(t *testing.T) {
	records := []models.Score{
		guestRow(1, "민수", 180),
		memberRow(2, 7, 210),
	}

	// zero matches is an empty set, not an error
	assert.Empty(t, guestScoreIDs(records, "없는사람"))
	assert.Empty(t, guestScoreIDs(nil, "민수"))

	// member rows never count as guest rows, even with a matching name
	alias := "민수"
	records[1].GuestName = &alias
	assert.ElementsMatch(t, []uint{1}, guestScoreIDs(records, "민수"))
}
