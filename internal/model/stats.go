package model

// StatsSnapshot is produced once per slow poll.
type StatsSnapshot struct {
	ActiveAddresses          int64   `json:"activeAddresses"`
	MarketCap                int64   `json:"marketCap"`
	Price                    float64 `json:"price"`
	EpochTickQuality         float64 `json:"epochTickQuality"`
	CirculatingSupply        int64   `json:"circulatingSupply"`
	BurnedQus                int64   `json:"burnedQus"`
	Timestamp                int64   `json:"timestamp"`
	Epoch                    int64   `json:"epoch,omitempty"`
	CurrentTick              int64   `json:"currentTick"`
	TicksInCurrentEpoch      int64   `json:"ticksInCurrentEpoch"`
	EmptyTicksInCurrentEpoch int64   `json:"emptyTicksInCurrentEpoch"`
}
