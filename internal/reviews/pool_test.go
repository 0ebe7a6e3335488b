package reviews

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialsAndEmail(t *testing.T) {
	assert.Equal(t, "NE", Initials("Ngozi Eze"))
	assert.Equal(t, "OA", Initials("Oluwaseun Ade Bright"))
	assert.Equal(t, "C", Initials("Cher"))
	assert.Equal(t, "", Initials("  "))

	assert.Equal(t, "chinedu.okeke@toolhatch.shop", ReviewerEmail("Chinedu  Okeke"))
}

func TestForCategoryReturnsTwoOrThree(t *testing.T) {
	pool := NewPool(rand.New(rand.NewSource(1)))
	require.Equal(t, len(templates), pool.Len())

	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		got := pool.ForCategory(2)
		require.GreaterOrEqual(t, len(got), 2)
		require.LessOrEqual(t, len(got), 3)
		seen[len(got)] = true

		ids := map[int]bool{}
		for _, r := range got {
			assert.False(t, ids[r.ID], "duplicate review in sample")
			ids[r.ID] = true
			assert.True(t, r.generic() || containsID(r.categoryIDs, 2))
			assert.True(t, strings.HasSuffix(r.ReviewerEmail, "@toolhatch.shop"))
		}
	}
	assert.True(t, seen[2] && seen[3])
}

func TestForCategoryIsDeterministicWithSeed(t *testing.T) {
	a := NewPool(rand.New(rand.NewSource(99))).ForCategory(4)
	b := NewPool(rand.New(rand.NewSource(99))).ForCategory(4)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestUnknownCategoryFallsBackToGeneric(t *testing.T) {
	pool := NewPool(nil)
	for _, r := range pool.ForCategory(99) {
		assert.True(t, r.generic())
	}
}

func TestReseedRestoresPool(t *testing.T) {
	pool := NewPool(nil)
	pool.mu.Lock()
	pool.reviews = pool.reviews[:1]
	pool.mu.Unlock()

	pool.Reseed()
	assert.Equal(t, len(templates), pool.Len())
}
