package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
)

// DataSource loads historical candles for the optimizer. Implementations are
// responsible for cleaning the raw feed: rows with unparseable timestamps are
// dropped, duplicate timestamps keep their first occurrence, and the result
// is returned in chronological order.
type DataSource interface {
	// Initialize loads the candle file at the given path.
	Initialize(path string) error
	// ReadAll returns the cleaned candles, optionally bounded by start and
	// end (inclusive).
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.MarketData, error)
	// Count returns the number of cleaned candles in the optional range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases the data source and any resources it holds.
	Close() error
}
