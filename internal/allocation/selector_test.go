package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resortRooms() []Room {
	return []Room{
		room("s1", 2, 1000),
		room("s2", 2, 1200),
		room("f1", 4, 1800),
	}
}

func newTestSelector(guests, nights int) *Selector {
	rooms := resortRooms()

	s := NewSelector(SelectorConf{Rooms: rooms, Guests: guests, Nights: nights, TierLimit: DefaultTierLimit})
	s.OnAvailabilityChanged(ids(rooms))

	return s
}

func TestSelectorStartsUninitialized(t *testing.T) {
	s := NewSelector(SelectorConf{Rooms: resortRooms(), Guests: 2, Nights: 1, TierLimit: DefaultTierLimit})

	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.Selection())
	assert.Empty(t, s.Totals().SelectedRooms)
}

func TestSelectorOptimizesOnAvailability(t *testing.T) {
	s := newTestSelector(4, 2)

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, Selection{4: 1}, s.Selection())

	totals := s.Totals()
	assert.Equal(t, 4, totals.TotalCapacity)
	assert.Equal(t, 1, totals.TotalRooms)
	assert.InDelta(t, 3600, totals.TotalCost, 1e-9)
	require.Len(t, totals.SelectedRooms, 1)
	assert.Equal(t, "f1", totals.SelectedRooms[0].ID)
}

func TestSelectorNoAvailableRooms(t *testing.T) {
	s := NewSelector(SelectorConf{Rooms: resortRooms(), Guests: 2, Nights: 1, TierLimit: DefaultTierLimit})
	s.OnAvailabilityChanged(NewAvailabilitySet())

	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.Categories())
	assert.Empty(t, s.Selection())
	assert.Zero(t, s.MaxPossibleCapacity())
}

func TestSelectorClampsGuests(t *testing.T) {
	rooms := []Room{room("a", 2, 1000), room("b", 4, 1800)}

	s := NewSelector(SelectorConf{Rooms: rooms, Guests: 10, Nights: 1, TierLimit: DefaultTierLimit})
	s.OnAvailabilityChanged(ids(rooms))

	assert.Equal(t, 6, s.MaxPossibleCapacity())
	assert.Equal(t, 6, s.EffectiveGuests())
	assert.Equal(t, 10, s.Guests())
	assert.Equal(t, Selection{2: 1, 4: 1}, s.Selection())
}

func TestSelectorIncrementBoundedByAvailability(t *testing.T) {
	s := newTestSelector(4, 1)

	s.IncrementRoom(2)
	s.IncrementRoom(2)
	assert.Equal(t, Selection{2: 2, 4: 1}, s.Selection())

	s.IncrementRoom(2)
	assert.Equal(t, Selection{2: 2, 4: 1}, s.Selection())
	assert.Equal(t, StateUserEdited, s.State())

	totals := s.Totals()
	assert.Equal(t, 8, totals.TotalCapacity)
	assert.Equal(t, 3, totals.TotalRooms)
	assert.InDelta(t, 3800, totals.TotalCost, 1e-9)

	got := make([]string, 0, len(totals.SelectedRooms))
	for _, r := range totals.SelectedRooms {
		got = append(got, r.ID)
	}

	assert.Equal(t, []string{"s1", "s2", "f1"}, got)
}

func TestSelectorIncrementUnknownTier(t *testing.T) {
	s := newTestSelector(4, 1)

	s.IncrementRoom(7)

	assert.Equal(t, Selection{4: 1}, s.Selection())
	assert.Equal(t, StateOptimized, s.State())
}

func TestSelectorDecrementRemovesEmptyTier(t *testing.T) {
	s := newTestSelector(4, 1)

	s.DecrementRoom(4)
	assert.Equal(t, Selection{}, s.Selection())
	assert.NotContains(t, s.Selection(), 4)

	s.DecrementRoom(4)
	assert.Equal(t, Selection{}, s.Selection())
	assert.Zero(t, s.Totals().TotalCost)
}

func TestSelectorIncrementThenDecrementRestores(t *testing.T) {
	for _, capacity := range []int{2, 4} {
		s := newTestSelector(2, 1)
		before := s.Selection()

		s.IncrementRoom(capacity)
		s.DecrementRoom(capacity)

		assert.Equal(t, before, s.Selection(), "capacity %d", capacity)
	}
}

func TestSelectorGuestChangeDiscardsEdits(t *testing.T) {
	s := newTestSelector(4, 1)

	s.IncrementRoom(2)
	require.Equal(t, StateUserEdited, s.State())

	s.OnGuestsChanged(2)

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, Selection{2: 1}, s.Selection())

	s.IncrementRoom(4)
	s.OnGuestsChanged(4)

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, Selection{4: 1}, s.Selection())
}

func TestSelectorSameGuestCountKeepsEdits(t *testing.T) {
	s := newTestSelector(4, 1)

	s.IncrementRoom(2)
	s.OnGuestsChanged(4)

	assert.Equal(t, StateUserEdited, s.State())
	assert.Equal(t, Selection{2: 1, 4: 1}, s.Selection())
}

func TestSelectorAvailabilityShrinkReoptimizes(t *testing.T) {
	s := newTestSelector(4, 1)
	s.IncrementRoom(2)

	s.OnAvailabilityChanged(NewAvailabilitySet("s1", "s2"))

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, Selection{2: 2}, s.Selection())
	assert.Zero(t, s.AvailableInTier(4))
	assert.Equal(t, 2, s.AvailableInTier(2))
}

func TestSelectorSameAvailabilityKeepsEdits(t *testing.T) {
	s := newTestSelector(4, 1)
	s.IncrementRoom(2)

	s.OnAvailabilityChanged(ids(resortRooms()))

	assert.Equal(t, StateUserEdited, s.State())
	assert.Equal(t, Selection{2: 1, 4: 1}, s.Selection())
	assert.InDelta(t, 2800, s.Totals().TotalCost, 1e-9)

	s.OnSearchChanged(4, ids(resortRooms()))

	assert.Equal(t, StateUserEdited, s.State())
	assert.Equal(t, Selection{2: 1, 4: 1}, s.Selection())
}

func TestSelectorSearchChangedUsesNewGuestsAndAvailability(t *testing.T) {
	s := newTestSelector(2, 1)
	s.IncrementRoom(4)

	s.OnSearchChanged(4, NewAvailabilitySet("s1", "s2"))

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, 4, s.Guests())
	assert.Equal(t, 4, s.MaxPossibleCapacity())
	assert.Equal(t, Selection{2: 2}, s.Selection())
}

func TestSelectorSearchChangedSameAvailabilityNewGuests(t *testing.T) {
	s := newTestSelector(2, 1)
	s.IncrementRoom(2)

	s.OnSearchChanged(4, ids(resortRooms()))

	assert.Equal(t, StateOptimized, s.State())
	assert.Equal(t, Selection{4: 1}, s.Selection())
}

func TestSelectorCategoriesIsACopy(t *testing.T) {
	s := newTestSelector(4, 1)

	categories := s.Categories()
	require.Len(t, categories, 2)

	categories[0], categories[1] = categories[1], categories[0]
	categories[1].Rooms[0].PricePerNight = 1

	again := s.Categories()
	assert.Equal(t, 2, again[0].Capacity)
	assert.InDelta(t, 1000, again[0].Rooms[0].PricePerNight, 1e-9)

	s.IncrementRoom(2)
	assert.InDelta(t, 2800, s.Totals().TotalCost, 1e-9)
}

func TestSelectorNightsScaleCost(t *testing.T) {
	s := newTestSelector(2, 1)
	assert.InDelta(t, 1000, s.Totals().TotalCost, 1e-9)

	s.SetNights(3)
	assert.InDelta(t, 3000, s.Totals().TotalCost, 1e-9)

	s.SetNights(0)
	assert.Equal(t, 1, s.Nights())
}

func TestSelectorSelectionIsACopy(t *testing.T) {
	s := newTestSelector(4, 1)

	sel := s.Selection()
	sel[2] = 5

	assert.Equal(t, Selection{4: 1}, s.Selection())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "optimized", StateOptimized.String())
	assert.Equal(t, "user_edited", StateUserEdited.String())
}
