package ledger

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a numeric input that clients may send either as a JSON number
// or as a string. Null and absent values are unset.
type Number struct {
	raw string
	set bool
}

// NewNumber builds a set Number from its textual form.
func NewNumber(raw string) Number {
	return Number{raw: raw, set: true}
}

// UnmarshalJSON accepts numbers, strings and null. Any other literal is
// kept verbatim so validation reports it as not numeric.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number{raw: strings.TrimSpace(s), set: true}
		return nil
	}
	if d, err := decimal.NewFromString(string(data)); err == nil {
		*n = Number{raw: d.String(), set: true}
		return nil
	}
	*n = Number{raw: string(data), set: true}
	return nil
}

// IsSet reports whether the field was present and not null.
func (n Number) IsSet() bool {
	return n.set
}

// Raw returns the textual input.
func (n Number) Raw() string {
	return n.raw
}

// Decimal returns the parsed value; unset and empty inputs count as zero.
func (n Number) Decimal() decimal.Decimal {
	if n.raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// UpsertRequest creates a new entry or replaces the one matching ID.
type UpsertRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"notblank"`
	Purchase    Number `json:"purchase" validate:"omitempty,decimal"`
	Return      Number `json:"return" validate:"omitempty,decimal"`
	RatePerPC   Number `json:"rate_per_pc" validate:"omitempty,decimal"`
	VC          Number `json:"vc" validate:"omitempty,decimal"`
	PreviousDue Number `json:"previous_due" validate:"omitempty,decimal"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}
