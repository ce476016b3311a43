package models

import (
	"encoding/json"
	"strconv"

	"github.com/jengzang/retention-backend-go/internal/stats"
)

// Percent is a percentage rounded to two decimals, or undefined when its
// denominator was zero. Undefined values encode as JSON null.
type Percent struct {
	Value float64
	Valid bool
}

// NewPercent returns a defined percentage
func NewPercent(v float64) Percent {
	return Percent{Value: v, Valid: true}
}

// PercentOf returns num/den*100 rounded to two decimals, undefined when den is zero
func PercentOf(num, den int) Percent {
	if den == 0 {
		return UndefinedPercent
	}
	return NewPercent(stats.Round(float64(num)/float64(den)*100, 2))
}

// UndefinedPercent is the marker for a percentage with a zero denominator
var UndefinedPercent = Percent{}

// String renders the value with two decimals, or N/A
func (p Percent) String() string {
	if !p.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(p.Value, 'f', 2, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = UndefinedPercent
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = NewPercent(v)
	return nil
}
