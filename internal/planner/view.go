package planner

import (
	"context"

	"github.com/Ishank307/vintzaclient/internal/allocation"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

type Tier struct {
	Capacity  int     `json:"capacity"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	Available int     `json:"available"`
	Selected  int     `json:"selected"`
	Image     string  `json:"image,omitempty"`
	StayPrice float64 `json:"stay_price"`
}

type View struct {
	ID                  string               `json:"id"`
	HotelID             string               `json:"hotel_id"`
	HotelName           string               `json:"hotel_name"`
	Location            string               `json:"location"`
	CheckIn             string               `json:"check_in"`
	CheckOut            string               `json:"check_out"`
	Nights              int                  `json:"nights"`
	Guests              int                  `json:"guests"`
	EffectiveGuests     int                  `json:"effective_guests"`
	MaxPossibleCapacity int                  `json:"max_possible_capacity"`
	State               string               `json:"state"`
	Tiers               []Tier               `json:"tiers"`
	Selection           allocation.Selection `json:"selection"`
	Totals              allocation.Totals    `json:"totals"`
	Quote               *pricing.Quote       `json:"quote,omitempty"`
	CanBook             bool                 `json:"can_book"`
	Message             string               `json:"message,omitempty"`
}

func (p *Planner) view(ctx context.Context, s *session) *View {
	selector := s.selector
	selection := selector.Selection()
	totals := selector.Totals()

	tiers := make([]Tier, 0, len(selector.Categories()))

	for _, c := range selector.Categories() {
		//nolint:exhaustruct
		tier := Tier{
			Capacity:  c.Capacity,
			MinPrice:  c.MinPrice,
			MaxPrice:  c.MaxPrice,
			Available: selector.AvailableInTier(c.Capacity),
			Selected:  selection[c.Capacity],
			StayPrice: c.MinPrice * float64(selection[c.Capacity]) * float64(selector.Nights()),
		}

		if len(c.Rooms) > 0 && len(c.Rooms[0].Images) > 0 {
			tier.Image = c.Rooms[0].Images[0]
		}

		tiers = append(tiers, tier)
	}

	msg := validationMessage(selector)

	//nolint:exhaustruct
	v := &View{
		ID:                  s.id.String(),
		HotelID:             s.hotel.ID,
		HotelName:           s.hotel.Name,
		Location:            s.hotel.Location,
		CheckIn:             s.window.CheckIn.Format(catalog.DateLayout),
		CheckOut:            s.window.CheckOut.Format(catalog.DateLayout),
		Nights:              selector.Nights(),
		Guests:              selector.Guests(),
		EffectiveGuests:     selector.EffectiveGuests(),
		MaxPossibleCapacity: selector.MaxPossibleCapacity(),
		State:               selector.State().String(),
		Tiers:               tiers,
		Selection:           selection,
		Totals:              totals,
		CanBook:             msg == "",
		Message:             msg,
	}

	quote, err := p.pricer.Quote(ctx, totals.TotalCost, "")
	if err != nil {
		p.l.LogWarnf("Could not quote session %s: %v", s.id, err)

		return v
	}

	v.Quote = &quote

	return v
}
