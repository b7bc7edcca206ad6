package view

// Display target ids.
const (
	TargetCurrentTick      = "current-tick"
	TargetCurrentEpoch     = "current-epoch"
	TargetTickDuration     = "tick-duration"
	TargetNetworkHealth    = "network-health"
	TargetHealthOverall    = "health-overall"
	TargetHealthTick       = "health-tick"
	TargetHealthEpoch      = "health-epoch"
	TargetHealthDuration   = "health-duration"
	TargetConnectionStatus = "connection-status"
	TargetDemoNotice       = "api-status-message"

	TargetActiveAddresses       = "active-addresses"
	TargetMarketCap             = "market-cap"
	TargetPrice                 = "qubic-price"
	TargetEpochQuality          = "epoch-quality"
	TargetCirculatingSupply     = "circulating-supply"
	TargetBurnedQus             = "burned-qus"
	TargetActiveAddressesChange = "active-addresses-change"
	TargetMarketCapChange       = "market-cap-change"
	TargetPriceChange           = "price-change"
	TargetQualityChange         = "quality-change"

	TargetInitialTickValue   = "initial-tick-value"
	TargetCurrentTickValue   = "current-tick-value"
	TargetRemainingTicks     = "remaining-ticks"
	TargetProgressPercentage = "progress-percentage"
	TargetEstimatedTime      = "estimated-time"
	TargetEpochProgress      = "epoch-progress"
	TargetEpochProgressText  = "epoch-progress-text"

	TargetLastUpdate = "last-update"
)

// AllTargets lists every id the renderer writes to.
var AllTargets = []string{
	TargetCurrentTick, TargetCurrentEpoch, TargetTickDuration, TargetNetworkHealth,
	TargetHealthOverall, TargetHealthTick, TargetHealthEpoch, TargetHealthDuration,
	TargetConnectionStatus, TargetDemoNotice,
	TargetActiveAddresses, TargetMarketCap, TargetPrice, TargetEpochQuality,
	TargetCirculatingSupply, TargetBurnedQus,
	TargetActiveAddressesChange, TargetMarketCapChange, TargetPriceChange, TargetQualityChange,
	TargetInitialTickValue, TargetCurrentTickValue, TargetRemainingTicks,
	TargetProgressPercentage, TargetEstimatedTime, TargetEpochProgress, TargetEpochProgressText,
	TargetLastUpdate,
}

// Placeholder is shown when a value is unavailable.
const Placeholder = "--"
