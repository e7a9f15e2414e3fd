package commission_fee

import "math"

// FlatRateCommissionFee charges a fixed fraction of the traded notional.
type FlatRateCommissionFee struct {
	rate float64
}

func NewFlatRateCommissionFee(rate float64) CommissionFee {
	return &FlatRateCommissionFee{rate: rate}
}

func (c *FlatRateCommissionFee) Calculate(quantity float64, price float64) float64 {
	return math.Abs(quantity*price) * c.rate
}

func (c *FlatRateCommissionFee) Rate() float64 {
	return c.rate
}
