package allocation

type candidate struct {
	selection Selection
	cost      float64
}

type search struct {
	categories []Category
	available  []int
	guests     int
	best       *candidate
}

// Optimize returns the cheapest tier combination whose capacity covers
// guests. Tiers are priced at their cheapest room. An empty Selection means
// no combination fits.
func Optimize(categories []Category, guests int, available AvailabilitySet) Selection {
	if len(categories) == 0 {
		return Selection{}
	}

	s := &search{
		categories: categories,
		available:  make([]int, len(categories)),
		guests:     guests,
	}

	for i := range categories {
		s.available[i] = len(categories[i].available(available))
	}

	s.walk(guests, 0, Selection{}, 0)

	if s.best == nil {
		return Selection{}
	}

	return s.best.selection
}

func (s *search) walk(remaining, idx int, current Selection, cost float64) {
	if remaining <= 0 {
		s.record(current, cost)

		return
	}

	if idx >= len(s.categories) {
		return
	}

	category := s.categories[idx]

	maxAvailable := s.available[idx]
	if maxAvailable == 0 {
		s.walk(remaining, idx+1, current, cost)

		return
	}

	// One room more than strictly needed lets a cheap overshoot beat a pricier exact fit.
	maxToTry := min(maxAvailable, ceilDiv(remaining, category.Capacity)+1)

	for count := 0; count <= maxToTry; count++ {
		next := current
		if count > 0 {
			next = current.Clone()
			next[category.Capacity] = count
		}

		s.walk(
			remaining-count*category.Capacity,
			idx+1,
			next,
			cost+float64(count)*category.MinPrice,
		)
	}
}

func (s *search) record(selection Selection, cost float64) {
	if len(selection) == 0 || selection.TotalCapacity() < s.guests {
		return
	}

	if s.best != nil && cost >= s.best.cost {
		return
	}

	s.best = &candidate{
		selection: selection.Clone(),
		cost:      cost,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
