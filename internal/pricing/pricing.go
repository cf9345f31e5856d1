package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const DefaultTaxRate = 0.18

var (
	ErrPromoCodeExpired  = errors.New("promo code expired")
	ErrPromoCodeNotFound = errors.New("promo code not found")
)

type storage interface {
	GetPromoCode(ctx context.Context, code string) (*PromoCode, error)
}

// Quote is the price of a stay. Taxes are charged on the discounted base.
type Quote struct {
	Base     float64 `json:"base"`
	Discount float64 `json:"discount"`
	Taxes    float64 `json:"taxes"`
	Total    float64 `json:"total"`
	Promo    string  `json:"promo_code,omitempty"`
}

type Adjustment interface {
	Apply(q *Quote) error
}

type PromoCode struct {
	Code               string    `json:"code"`
	DiscountPercentage float64   `json:"discount_percentage"`
	ValidThrough       time.Time `json:"valid_through"`
}

func (p *PromoCode) Apply(q *Quote) error {
	if time.Now().UTC().After(p.ValidThrough) {
		return fmt.Errorf("promo code %s: %w", p.Code, ErrPromoCodeExpired)
	}

	q.Discount += (q.Base - q.Discount) * p.DiscountPercentage / 100 //nolint:gomnd
	q.Promo = p.Code

	return nil
}

// Tax rounds to whole currency units.
type Tax struct {
	Rate float64
}

func (t Tax) Apply(q *Quote) error {
	q.Taxes = math.Round((q.Base - q.Discount) * t.Rate)

	return nil
}

type Manager struct {
	storage storage
	taxRate float64
}

func New(storage storage, taxRate float64) *Manager {
	return &Manager{storage: storage, taxRate: taxRate}
}

// Quote prices a base amount, applying the promo code first when one is given.
func (m *Manager) Quote(ctx context.Context, base float64, promoCode string) (Quote, error) {
	adjustments, err := m.Adjustments(ctx, promoCode)
	if err != nil {
		return Quote{}, err
	}

	return Apply(base, adjustments...)
}

func (m *Manager) Adjustments(ctx context.Context, promoCode string) ([]Adjustment, error) {
	var adjustments []Adjustment

	if code := strings.TrimSpace(promoCode); code != "" {
		promo, err := m.storage.GetPromoCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("get promo code %s from storage: %w", code, err)
		}

		adjustments = append(adjustments, promo)
	}

	return append(adjustments, Tax{Rate: m.taxRate}), nil
}

func Apply(base float64, adjustments ...Adjustment) (Quote, error) {
	//nolint:exhaustruct
	q := Quote{Base: base}

	for _, adjustment := range adjustments {
		if err := adjustment.Apply(&q); err != nil {
			return Quote{}, fmt.Errorf("apply adjustment to quote: %w", err)
		}
	}

	q.Total = q.Base - q.Discount + q.Taxes

	return q, nil
}
