package allocation

import "sort"

type Room struct {
	ID            string   `json:"id"`
	Capacity      int      `json:"capacity"`
	PricePerNight float64  `json:"price_per_night"`
	Images        []string `json:"images,omitempty"`
}

// Category is a capacity tier. Rooms are ordered cheapest first.
type Category struct {
	Capacity int     `json:"capacity"`
	Rooms    []Room  `json:"rooms"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
}

// AvailabilitySet holds the ids of rooms bookable for the current stay window.
type AvailabilitySet map[string]struct{}

func NewAvailabilitySet(ids ...string) AvailabilitySet {
	set := make(AvailabilitySet, len(ids))

	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

func (a AvailabilitySet) Has(id string) bool {
	_, ok := a[id]

	return ok
}

func (a AvailabilitySet) Equal(b AvailabilitySet) bool {
	if len(a) != len(b) {
		return false
	}

	for id := range a {
		if !b.Has(id) {
			return false
		}
	}

	return true
}

func (a AvailabilitySet) Filter(rooms []Room) []Room {
	res := make([]Room, 0, len(rooms))

	for _, room := range rooms {
		if a.Has(room.ID) {
			res = append(res, room)
		}
	}

	return res
}

// Selection maps a tier capacity to the number of rooms chosen from it.
// Zero counts are never stored.
type Selection map[int]int

func (s Selection) TotalCapacity() int {
	var total int

	for capacity, count := range s {
		total += capacity * count
	}

	return total
}

func (s Selection) TotalRooms() int {
	var total int

	for _, count := range s {
		total += count
	}

	return total
}

func (s Selection) Clone() Selection {
	res := make(Selection, len(s))

	for capacity, count := range s {
		res[capacity] = count
	}

	return res
}

// Capacities returns the chosen tiers in ascending order.
func (s Selection) Capacities() []int {
	res := make([]int, 0, len(s))

	for capacity := range s {
		res = append(res, capacity)
	}

	sort.Ints(res)

	return res
}

func (c *Category) available(set AvailabilitySet) []Room {
	return set.Filter(c.Rooms)
}

func findCategory(categories []Category, capacity int) *Category {
	for i := range categories {
		if categories[i].Capacity == capacity {
			return &categories[i]
		}
	}

	return nil
}
