package cart

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulatesQuantity(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Add("u1", "p1", 1))
	require.NoError(t, m.Add("u1", "p2", 2))
	require.NoError(t, m.Add("u1", "p1", 3))

	items := m.Items("u1")
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, "p2", items[1].ProductID)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	m := NewManager()

	assert.ErrorIs(t, m.Add("u1", "p1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, m.Add("u1", "p1", -2), ErrInvalidQuantity)
	assert.Empty(t, m.Items("u1"))
}

func TestSetQuantityOverwrites(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Add("u1", "p1", 5))
	require.NoError(t, m.SetQuantity("u1", "p1", 2))

	items := m.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	// Setting quantity of an absent product adds it.
	require.NoError(t, m.SetQuantity("u1", "p2", 1))
	assert.Len(t, m.Items("u1"), 2)
}

func TestRemoveAndClear(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Add("u1", "p1", 1))
	require.NoError(t, m.Add("u1", "p2", 1))

	m.Remove("u1", "p1")
	m.Remove("u1", "p3") // absent: no-op
	items := m.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	m.Clear("u1")
	assert.Empty(t, m.Items("u1"))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Add("u1", "p1", 1))
	require.NoError(t, m.Add("u2", "p1", 7))

	assert.Equal(t, 1, m.Items("u1")[0].Quantity)
	assert.Equal(t, 7, m.Items("u2")[0].Quantity)

	m.Clear("u1")
	assert.Empty(t, m.Items("u1"))
	assert.Len(t, m.Items("u2"), 1)
}

func TestConcurrentAdds(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Add("u1", "p1", 1))
		}()
	}
	wg.Wait()

	items := m.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, 32, items[0].Quantity)
}
