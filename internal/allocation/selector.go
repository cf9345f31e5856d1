package allocation

type State int

const (
	StateUninitialized State = iota
	StateOptimized
	StateUserEdited
)

func (s State) String() string {
	switch s {
	case StateOptimized:
		return "optimized"
	case StateUserEdited:
		return "user_edited"
	default:
		return "uninitialized"
	}
}

type Totals struct {
	TotalCapacity int     `json:"total_capacity"`
	TotalRooms    int     `json:"total_rooms"`
	TotalCost     float64 `json:"total_cost"`
	SelectedRooms []Room  `json:"selected_rooms"`
}

type SelectorConf struct {
	Rooms     []Room
	Guests    int
	Nights    int
	TierLimit int
}

// Selector owns the room selection of one planning session. It is not safe
// for concurrent use; callers serialise access per session.
type Selector struct {
	rooms     []Room
	tierLimit int
	guests    int
	nights    int

	available   AvailabilitySet
	categories  []Category
	maxCapacity int

	selection Selection
	state     State
	totals    Totals
}

func NewSelector(conf SelectorConf) *Selector {
	//nolint:exhaustruct
	s := &Selector{
		rooms:     conf.Rooms,
		tierLimit: conf.TierLimit,
		guests:    conf.Guests,
		nights:    max(conf.Nights, 1),
		available: NewAvailabilitySet(),
		selection: Selection{},
	}

	s.RecomputeDerived()

	return s
}

// OnAvailabilityChanged replaces the availability set. A different set
// rebuilds the tiers and re-optimises, discarding manual edits. The same set
// only refreshes totals.
func (s *Selector) OnAvailabilityChanged(available AvailabilitySet) {
	s.OnSearchChanged(s.guests, available)
}

// OnGuestsChanged re-optimises from scratch for the new party size. Setting
// the same guest count again is not a change.
func (s *Selector) OnGuestsChanged(guests int) {
	if guests == s.guests {
		return
	}

	s.guests = guests
	s.reoptimize()
}

// OnSearchChanged applies a guest count and the availability fetched for it
// in one pass, so the optimizer never runs against a stale set.
func (s *Selector) OnSearchChanged(guests int, available AvailabilitySet) {
	if available == nil {
		available = NewAvailabilitySet()
	}

	guestsChanged := guests != s.guests
	s.guests = guests

	if available.Equal(s.available) && !guestsChanged && s.state != StateUninitialized {
		s.RecomputeDerived()

		return
	}

	s.available = available

	availableRooms := available.Filter(s.rooms)
	s.categories = CategorizeWithLimit(availableRooms, s.tierLimit)

	s.maxCapacity = 0
	for _, room := range availableRooms {
		s.maxCapacity += room.Capacity
	}

	s.reoptimize()
}

func (s *Selector) SetNights(nights int) {
	s.nights = max(nights, 1)
	s.RecomputeDerived()
}

// IncrementRoom adds a room from the tier while the tier still has an
// unselected available room. Otherwise it does nothing.
func (s *Selector) IncrementRoom(capacity int) {
	category := findCategory(s.categories, capacity)
	if category == nil {
		return
	}

	count := s.selection[capacity]
	if count >= len(category.available(s.available)) {
		return
	}

	s.selection[capacity] = count + 1
	s.state = StateUserEdited

	s.RecomputeDerived()
}

func (s *Selector) DecrementRoom(capacity int) {
	count := s.selection[capacity]
	if count <= 0 {
		return
	}

	if count == 1 {
		delete(s.selection, capacity)
	} else {
		s.selection[capacity] = count - 1
	}

	s.state = StateUserEdited

	s.RecomputeDerived()
}

// RecomputeDerived rebuilds totals from the selection. Each chosen tier
// contributes its cheapest available rooms.
func (s *Selector) RecomputeDerived() {
	totals := Totals{
		TotalCapacity: s.selection.TotalCapacity(),
		TotalRooms:    s.selection.TotalRooms(),
		TotalCost:     0,
		SelectedRooms: []Room{},
	}

	for _, capacity := range s.selection.Capacities() {
		count := s.selection[capacity]

		category := findCategory(s.categories, capacity)
		if category == nil {
			continue
		}

		rooms := category.available(s.available)
		for i := 0; i < count && i < len(rooms); i++ {
			totals.SelectedRooms = append(totals.SelectedRooms, rooms[i])
		}

		totals.TotalCost += category.MinPrice * float64(count) * float64(s.nights)
	}

	s.totals = totals
}

func (s *Selector) reoptimize() {
	s.selection = Selection{}
	s.state = StateUninitialized

	if len(s.categories) > 0 {
		s.selection = Optimize(s.categories, s.EffectiveGuests(), s.available)
		s.state = StateOptimized
	}

	s.RecomputeDerived()
}

func (s *Selector) Selection() Selection {
	return s.selection.Clone()
}

func (s *Selector) Totals() Totals {
	totals := s.totals
	totals.SelectedRooms = make([]Room, len(s.totals.SelectedRooms))
	copy(totals.SelectedRooms, s.totals.SelectedRooms)

	return totals
}

// Categories returns a copy of the current tiers.
func (s *Selector) Categories() []Category {
	res := make([]Category, len(s.categories))

	for i, c := range s.categories {
		res[i] = c
		res[i].Rooms = append([]Room(nil), c.Rooms...)
	}

	return res
}

func (s *Selector) State() State {
	return s.state
}

func (s *Selector) Guests() int {
	return s.guests
}

// EffectiveGuests is the requested guest count clamped to what the available
// rooms can sleep.
func (s *Selector) EffectiveGuests() int {
	return min(s.guests, s.maxCapacity)
}

func (s *Selector) MaxPossibleCapacity() int {
	return s.maxCapacity
}

func (s *Selector) Nights() int {
	return s.nights
}

// AvailableInTier reports how many rooms of the tier are currently bookable.
func (s *Selector) AvailableInTier(capacity int) int {
	category := findCategory(s.categories, capacity)
	if category == nil {
		return 0
	}

	return len(category.available(s.available))
}
