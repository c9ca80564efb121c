package types

import "time"

// MarketData is a single OHLCV bar. Bars within a dataset are strictly
// increasing in time with no duplicate timestamps; the datasource layer is
// responsible for enforcing that before data reaches the engine.
type MarketData struct {
	Time   time.Time `csv:"time"`
	Open   float64   `csv:"open"`
	High   float64   `csv:"high"`
	Low    float64   `csv:"low"`
	Close  float64   `csv:"close"`
	Volume float64   `csv:"volume"`
}
