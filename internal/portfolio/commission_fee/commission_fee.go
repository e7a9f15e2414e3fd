package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for trading quantity units at price
	Calculate(quantity float64, price float64) float64
	// Rate returns the fee as a fraction of the traded notional
	Rate() float64
}

// NewCommissionFee returns a flat rate fee, or a zero fee when rate is 0.
func NewCommissionFee(rate float64) CommissionFee {
	if rate == 0 {
		return NewZeroCommissionFee()
	}

	return NewFlatRateCommissionFee(rate)
}
