package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func room(id string, capacity int, price float64) Room {
	//nolint:exhaustruct
	return Room{ID: id, Capacity: capacity, PricePerNight: price}
}

func TestCategorize(t *testing.T) {
	rooms := []Room{
		room("d1", 4, 2500),
		room("a1", 2, 1200),
		room("b1", 3, 1500),
		room("a2", 2, 1000),
		room("e1", 6, 4000),
		room("d2", 4, 1800),
	}

	categories := Categorize(rooms)

	require.Len(t, categories, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{categories[0].Capacity, categories[1].Capacity, categories[2].Capacity})

	assert.Equal(t, "a2", categories[0].Rooms[0].ID)
	assert.Equal(t, "a1", categories[0].Rooms[1].ID)
	assert.InDelta(t, 1000, categories[0].MinPrice, 0)
	assert.InDelta(t, 1200, categories[0].MaxPrice, 0)

	assert.InDelta(t, 1800, categories[2].MinPrice, 0)
	assert.InDelta(t, 2500, categories[2].MaxPrice, 0)
}

func TestCategorizeEmpty(t *testing.T) {
	assert.Empty(t, Categorize(nil))
	assert.Empty(t, Categorize([]Room{}))
}

func TestCategorizeWithLimit(t *testing.T) {
	rooms := []Room{room("a", 1, 10), room("b", 2, 20), room("c", 3, 30), room("d", 4, 40)}

	tests := []struct {
		name  string
		limit int
		want  []int
	}{
		{name: "default three tiers", limit: DefaultTierLimit, want: []int{1, 2, 3}},
		{name: "single tier", limit: 1, want: []int{1}},
		{name: "no limit", limit: 0, want: []int{1, 2, 3, 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			categories := CategorizeWithLimit(rooms, tc.limit)

			got := make([]int, 0, len(categories))
			for _, c := range categories {
				got = append(got, c.Capacity)
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCategorizeSkipsRoomsWithoutCapacity(t *testing.T) {
	categories := Categorize([]Room{room("a", 0, 10), room("b", 2, 20)})

	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].Capacity)
}

func TestCategorizeIsIdempotent(t *testing.T) {
	rooms := []Room{
		room("a", 2, 900),
		room("b", 5, 3000),
		room("c", 2, 700),
		room("d", 3, 1100),
		room("e", 4, 2000),
		room("f", 3, 1100),
	}

	first := Categorize(rooms)

	var flattened []Room
	for _, c := range first {
		flattened = append(flattened, c.Rooms...)
	}

	assert.Equal(t, first, Categorize(flattened))
}

func TestCategorizeDoesNotReorderInput(t *testing.T) {
	rooms := []Room{room("b", 2, 20), room("a", 2, 10)}

	Categorize(rooms)

	assert.Equal(t, "b", rooms[0].ID)
}
