package allocation

import "sort"

// DefaultTierLimit keeps only the three smallest capacities.
const DefaultTierLimit = 3

func Categorize(rooms []Room) []Category {
	return CategorizeWithLimit(rooms, DefaultTierLimit)
}

// CategorizeWithLimit groups rooms by capacity and keeps the limit lowest
// tiers. A non-positive limit keeps every tier. Rooms that sleep nobody are
// ignored.
func CategorizeWithLimit(rooms []Room, limit int) []Category {
	groups := make(map[int][]Room)

	for _, room := range rooms {
		if room.Capacity <= 0 {
			continue
		}

		groups[room.Capacity] = append(groups[room.Capacity], room)
	}

	capacities := make([]int, 0, len(groups))
	for capacity := range groups {
		capacities = append(capacities, capacity)
	}

	sort.Ints(capacities)

	if limit > 0 && len(capacities) > limit {
		capacities = capacities[:limit]
	}

	categories := make([]Category, 0, len(capacities))

	for _, capacity := range capacities {
		tier := groups[capacity]
		sort.SliceStable(tier, func(i, j int) bool {
			return tier[i].PricePerNight < tier[j].PricePerNight
		})

		categories = append(categories, Category{
			Capacity: capacity,
			Rooms:    tier,
			MinPrice: tier[0].PricePerNight,
			MaxPrice: tier[len(tier)-1].PricePerNight,
		})
	}

	return categories
}
