package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ishank307/vintzaclient/internal/allocation"
)

const DateLayout = "2006-01-02"

var (
	ErrHotelNotFound = errors.New("hotel not found")
	ErrInvalidWindow = errors.New("check-out must be after check-in")
)

type Hotel struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Rooms    []allocation.Room `json:"rooms"`
}

// Query asks which rooms of a hotel are bookable for every night of a window.
type Query struct {
	HotelID string
	Window  Window
	Guests  int
}

type Window struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// ParseWindow reads YYYY-MM-DD dates. An empty check-in means today and an
// empty check-out means the day after check-in.
func ParseWindow(checkIn, checkOut string, now time.Time) (Window, error) {
	//nolint:exhaustruct
	w := Window{CheckIn: truncateDay(now)}

	if checkIn != "" {
		d, err := time.Parse(DateLayout, checkIn)
		if err != nil {
			return Window{}, fmt.Errorf("parse check-in %q: %w", checkIn, err)
		}

		w.CheckIn = d
	}

	w.CheckOut = w.CheckIn.AddDate(0, 0, 1)

	if checkOut != "" {
		d, err := time.Parse(DateLayout, checkOut)
		if err != nil {
			return Window{}, fmt.Errorf("parse check-out %q: %w", checkOut, err)
		}

		w.CheckOut = d
	}

	if err := w.Validate(); err != nil {
		return Window{}, err
	}

	return w, nil
}

func (w Window) Validate() error {
	if !w.CheckOut.After(w.CheckIn) {
		return ErrInvalidWindow
	}

	return nil
}

// Nights is the number of started days between check-in and check-out, at
// least one.
func (w Window) Nights() int {
	hours := w.CheckOut.Sub(w.CheckIn).Hours()

	nights := int(hours / 24) //nolint:gomnd
	if float64(nights*24) < hours {
		nights++
	}

	return max(nights, 1)
}

// Dates lists the nights of the stay; the check-out day is not included.
func (w Window) Dates() []time.Time {
	var dates []time.Time

	for d := truncateDay(w.CheckIn); d.Before(w.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	return dates
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.CheckIn.Format(DateLayout), w.CheckOut.Format(DateLayout))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
