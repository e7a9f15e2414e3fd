package commission_fee

// ZeroCommissionFee implements CommissionFee interface with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new zero commission fee.
func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

// Calculate returns 0 for any trade.
func (c *ZeroCommissionFee) Calculate(quantity float64, price float64) float64 {
	return 0.0
}

func (c *ZeroCommissionFee) Rate() float64 {
	return 0.0
}
