package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbellini/daybook-server/internal/model"
)

func TestApply(t *testing.T) {
	alice := model.Account{ID: uuid.New(), Handle: "alice"}
	bruno := model.Account{ID: uuid.New(), Handle: "bruno"}
	directory := []model.Account{alice, bruno}

	dated := model.Report{
		ID:      uuid.New(),
		OwnerID: alice.ID,
		Body:    "Report del 12/03/2024\n\nVisita in Azienda Rossi",
	}
	undated := model.Report{
		ID:      uuid.New(),
		OwnerID: alice.ID,
		Body:    "Appunti generali\n\nvisita breve",
	}
	brunos := model.Report{
		ID:      uuid.New(),
		OwnerID: bruno.ID,
		Body:    "Report del 12/03/2024\n\ngiro mattutino",
	}
	orphan := model.Report{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Body:    "Report del 12/03/2024\n",
	}

	all := []model.Report{dated, undated, brunos, orphan}
	targetDate := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []uuid.UUID
	}{
		{
			name:    "empty filter matches everything with a known owner",
			filter:  Filter{},
			wantIDs: []uuid.UUID{dated.ID, undated.ID, brunos.ID},
		},
		{
			name:    "owner restriction",
			filter:  Filter{OwnerIDs: []uuid.UUID{bruno.ID}},
			wantIDs: []uuid.UUID{brunos.ID},
		},
		{
			name:    "date restriction excludes undated reports",
			filter:  Filter{Date: &targetDate},
			wantIDs: []uuid.UUID{dated.ID, brunos.ID},
		},
		{
			name:    "keyword is case-insensitive and scans the whole body",
			filter:  Filter{Keyword: "AZIENDA"},
			wantIDs: []uuid.UUID{dated.ID},
		},
		{
			name:    "blank keyword imposes no restriction",
			filter:  Filter{Keyword: "   "},
			wantIDs: []uuid.UUID{dated.ID, undated.ID, brunos.ID},
		},
		{
			name:    "keyword surrounding spaces match verbatim",
			filter:  Filter{Keyword: " in "},
			wantIDs: []uuid.UUID{dated.ID},
		},
		{
			name: "criteria combine conjunctively",
			filter: Filter{
				OwnerIDs: []uuid.UUID{alice.ID},
				Date:     &targetDate,
				Keyword:  "rossi",
			},
			wantIDs: []uuid.UUID{dated.ID},
		},
		{
			name: "conjunction with no common match is empty",
			filter: Filter{
				OwnerIDs: []uuid.UUID{bruno.ID},
				Keyword:  "rossi",
			},
			wantIDs: []uuid.UUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(all, directory, tt.filter)

			gotIDs := make([]uuid.UUID, 0, len(got))
			for _, r := range got {
				gotIDs = append(gotIDs, r.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestApply_AttachesAuthor(t *testing.T) {
	owner := model.Account{ID: uuid.New(), Handle: "alice"}
	r := model.Report{ID: uuid.New(), OwnerID: owner.ID, Body: "titolo\n"}

	got := Apply([]model.Report{r}, []model.Account{owner}, Filter{})

	require.Len(t, got, 1)
	assert.Equal(t, owner, got[0].Author)
	assert.Equal(t, r.ID, got[0].ID)
}

func TestFindDuplicateTitle(t *testing.T) {
	first := model.Report{ID: uuid.New(), Body: "Report del 12/03/2024\ncorpo"}
	second := model.Report{ID: uuid.New(), Body: "Altro titolo\ncorpo"}
	existing := []model.Report{first, second}

	t.Run("new report with colliding title", func(t *testing.T) {
		title, dup := FindDuplicateTitle(existing, "Report del 12/03/2024\nnuovo corpo", uuid.Nil)
		assert.True(t, dup)
		assert.Equal(t, "Report del 12/03/2024", title)
	})

	t.Run("new report with fresh title", func(t *testing.T) {
		_, dup := FindDuplicateTitle(existing, "Report del 13/03/2024\n", uuid.Nil)
		assert.False(t, dup)
	})

	t.Run("update keeping its own title is not a duplicate", func(t *testing.T) {
		_, dup := FindDuplicateTitle(existing, "Report del 12/03/2024\ncorpo cambiato", first.ID)
		assert.False(t, dup)
	})

	t.Run("update colliding with another report", func(t *testing.T) {
		_, dup := FindDuplicateTitle(existing, "Report del 12/03/2024\n", second.ID)
		assert.True(t, dup)
	})

	t.Run("comparison is case-sensitive", func(t *testing.T) {
		_, dup := FindDuplicateTitle(existing, "report del 12/03/2024\n", uuid.Nil)
		assert.False(t, dup)
	})

	t.Run("only the trimmed first line counts", func(t *testing.T) {
		_, dup := FindDuplicateTitle(existing, "  Report del 12/03/2024  \ndifferent body entirely", uuid.Nil)
		assert.True(t, dup)
	})
}
