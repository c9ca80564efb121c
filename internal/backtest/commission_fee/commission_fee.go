package commission_fee

// CommissionFee models the transaction cost of one trade leg.
type CommissionFee interface {
	// Calculate returns the fee in USD for a trade leg with the given
	// notional value (quantity x price).
	Calculate(notional float64) float64
}

type Broker string

const (
	BrokerFlatRate Broker = "flat_rate"
	BrokerZero     Broker = "zero_commission"
)

// DefaultFlatRate is the reference exchange taker fee used when no rate is
// configured (0.125%).
const DefaultFlatRate = 0.00125

func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerFlatRate:
		return NewFlatRateCommissionFee(rate)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
