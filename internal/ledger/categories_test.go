package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateCategory(t *testing.T) {
	l := newTestLedger(t)

	food1, err := l.ResolveOrCreateCategory("Food")
	require.NoError(t, err)
	food2, err := l.ResolveOrCreateCategory(" Food ")
	require.NoError(t, err)
	assert.Equal(t, food1, food2)

	pets, err := l.ResolveOrCreateCategory("Pets")
	require.NoError(t, err)
	assert.NotEqual(t, food1, pets)

	again, err := l.ResolveOrCreateCategory("Pets")
	require.NoError(t, err)
	assert.Equal(t, pets, again)

	_, err = l.ResolveOrCreateCategory("")
	assert.ErrorIs(t, err, ErrEmptyCategory)
}

func TestExtractCategoryNamesSortedUnique(t *testing.T) {
	l := newTestLedger(t)

	for _, n := range []string{"Zoo", "Apples", "Zoo", "Mid"} {
		_, err := l.ResolveOrCreateCategory(n)
		require.NoError(t, err)
	}

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i, n := range names {
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
		if i > 0 {
			assert.Less(t, names[i-1], n)
		}
	}
	assert.Equal(t, "Apples", names[0])
	assert.Equal(t, "Zoo", names[len(names)-1])
}

func TestListCategories(t *testing.T) {
	l := newTestLedger(t)

	cats, err := l.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, len(testDefaults))
	for _, c := range cats {
		assert.Positive(t, c.ID)
	}
	assert.Equal(t, "Entertainment", cats[0].Name)
}

func TestDeleteCategory(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 1, Category: "Gym", Date: "2024-01-01"})

	ok, err := l.DeleteCategory("Gym")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.True(t, IsValidation(err))

	ok, err = l.DeleteCategory("Nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.DeleteExpense(id)
	require.NoError(t, err)

	ok, err = l.DeleteCategory("Gym")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "Gym")
}

func TestForeignKeyRestrictsCategoryDelete(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-01-01"})

	_, err := l.db.Exec("DELETE FROM categories WHERE name = ?", "Food")
	require.Error(t, err, "schema must refuse to orphan expenses")
}
