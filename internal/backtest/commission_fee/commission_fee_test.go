package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatRateCommissionFee(t *testing.T) {
	fee := NewFlatRateCommissionFee(0.00125)
	assert.InDelta(t, 625.0, fee.Calculate(500_000), 1e-9)
}

func TestFlatRateCommissionFeeNegativeRateUsesDefault(t *testing.T) {
	fee := NewFlatRateCommissionFee(-1)
	assert.InDelta(t, DefaultFlatRate*1000, fee.Calculate(1000), 1e-9)
}

func TestZeroCommissionFee(t *testing.T) {
	fee := NewZeroCommissionFee()
	assert.Zero(t, fee.Calculate(1_000_000))
}

func TestGetCommissionFeeHandler(t *testing.T) {
	assert.IsType(t, &FlatRateCommissionFee{}, GetCommissionFeeHandler(BrokerFlatRate, 0.001))
	assert.IsType(t, &ZeroCommissionFee{}, GetCommissionFeeHandler(BrokerZero, 0))
	assert.IsType(t, &ZeroCommissionFee{}, GetCommissionFeeHandler("unknown", 0))
}
