package ledger

import "github.com/shopspring/decimal"

// Amounts holds the numeric columns of an entry, inputs and derived.
type Amounts struct {
	Purchase    decimal.Decimal
	Return      decimal.Decimal
	Sell        decimal.Decimal
	RatePerPC   decimal.Decimal
	NetValue    decimal.Decimal
	VC          decimal.Decimal
	PreviousDue decimal.Decimal
	Total       decimal.Decimal
}

// Compute derives sell, net value and the row total:
//
//	sell      = purchase - return
//	net_value = sell * rate_per_pc
//	total     = net_value - vc + previous_due
func Compute(purchase, ret, rate, vc, previousDue decimal.Decimal) Amounts {
	sell := purchase.Sub(ret)
	net := sell.Mul(rate)
	return Amounts{
		Purchase:    purchase,
		Return:      ret,
		Sell:        sell,
		RatePerPC:   rate,
		NetValue:    net,
		VC:          vc,
		PreviousDue: previousDue,
		Total:       net.Sub(vc).Add(previousDue),
	}
}

// Apply writes the amounts onto e. Net value and total carry two decimals.
func (a Amounts) Apply(e *Entry) {
	e.Purchase = a.Purchase.String()
	e.Return = a.Return.String()
	e.Sell = a.Sell.String()
	e.RatePerPC = a.RatePerPC.String()
	e.NetValue = a.NetValue.StringFixed(2)
	e.VC = a.VC.String()
	e.PreviousDue = a.PreviousDue.String()
	e.Total = a.Total.StringFixed(2)
}

// clearAmounts blanks every numeric column of e.
func clearAmounts(e *Entry) {
	e.Purchase = ""
	e.Return = ""
	e.Sell = ""
	e.RatePerPC = ""
	e.NetValue = ""
	e.VC = ""
	e.PreviousDue = ""
	e.Total = ""
}
