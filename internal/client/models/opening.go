package models

import (
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
	"github.com/shopspring/decimal"
)

const (
	FieldOpeningCash = "openingCash"
	FieldNotes       = "notes"
)

// DayOpening is the cash in the drawer when a day starts.
type DayOpening struct {
	Date        string
	OpeningCash decimal.Decimal
	Notes       string
	CreatedAt   string
}

type DayOpeningInput struct {
	Date        string
	OpeningCash string
	Notes       string
}

func NewDayOpening(in DayOpeningInput, c timex.Clock) (DayOpening, error) {
	now := c.Now()
	o := DayOpening{
		Date:      now.Format(timex.DateLayout),
		CreatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if strings.TrimSpace(in.OpeningCash) == "" {
		return DayOpening{}, invalid(FieldOpeningCash, "is required")
	}
	if err := o.Apply(in); err != nil {
		return DayOpening{}, err
	}
	return o, nil
}

func (o *DayOpening) Apply(in DayOpeningInput) error {
	next := *o
	if s := strings.TrimSpace(in.Date); s != "" {
		if !timex.ValidDate(s) {
			return invalid(FieldDate, "must be YYYY-MM-DD")
		}
		next.Date = s
	}
	if in.OpeningCash != "" {
		v, err := ledger.ParseAmount(in.OpeningCash)
		if err != nil {
			return invalid(FieldOpeningCash, "%v", err)
		}
		next.OpeningCash = v
	}
	if s := strings.TrimSpace(in.Notes); s != "" {
		next.Notes = s
	}
	*o = next
	return nil
}

func (o DayOpening) Payload() Payload {
	return Payload{
		FieldDate:        o.Date,
		FieldOpeningCash: o.OpeningCash.String(),
		FieldNotes:       o.Notes,
		FieldCreatedAt:   o.CreatedAt,
	}
}

func DayOpeningFromPayload(p Payload) DayOpening {
	return DayOpening{
		Date:        p.Text(FieldDate),
		OpeningCash: p.Decimal(FieldOpeningCash),
		Notes:       p.Text(FieldNotes),
		CreatedAt:   p.Text(FieldCreatedAt),
	}
}
