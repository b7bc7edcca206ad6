package view

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/shopspring/decimal"
)

type scale struct {
	limit  float64
	suffix string
}

var (
	shortScales = []scale{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	largeScales = []scale{{1e15, "P"}, {1e12, "T"}, {1e9, "B"}, {1e6, "M"}}
)

// FormatNumber abbreviates with B/M/K and one decimal, or uses thousands
// separators below 1000.
func FormatNumber(v float64) string {
	return formatScaled(v, shortScales)
}

// FormatLargeNumber is FormatNumber for supply-scale figures: it adds T and P
// and keeps separators for everything under a million.
func FormatLargeNumber(v float64) string {
	return formatScaled(v, largeScales)
}

func formatScaled(v float64, scales []scale) string {
	for _, s := range scales {
		if v >= s.limit {
			return strconv.FormatFloat(v/s.limit, 'f', 1, 64) + s.suffix
		}
	}
	return FormatGrouped(v)
}

// FormatGrouped prints v with thousands separators and at most three decimals.
func FormatGrouped(v float64) string {
	return humanize.Commaf(math.Round(v*1000) / 1000)
}

// FormatInt prints n with thousands separators.
func FormatInt(n int64) string {
	return humanize.Comma(n)
}

func FormatPrice(p float64) string {
	return "$" + decimal.NewFromFloat(p).StringFixed(9)
}

// FormatPercent prints p with the given decimals and a trailing "%".
func FormatPercent(p float64, places int32) string {
	return decimal.NewFromFloat(p).StringFixed(places) + "%"
}

// PercentDelta returns the signed change from prev to cur, e.g. "+7.14%".
// ok is false when prev is zero and no delta can be shown.
func PercentDelta(cur, prev float64) (text string, tone Tone, ok bool) {
	p := decimal.NewFromFloat(prev)
	if p.IsZero() {
		return "", ToneNone, false
	}
	pct := decimal.NewFromFloat(cur).Sub(p).Div(p).Mul(decimal.NewFromInt(100)).Round(2)

	text = pct.StringFixed(2) + "%"
	switch pct.Sign() {
	case 1:
		return "+" + text, TonePositive, true
	case -1:
		return text, ToneNegative, true
	default:
		return "+" + text, ToneNeutral, true
	}
}

// ProgressTone colours the epoch progress bar.
func ProgressTone(percent float64) Tone {
	switch {
	case percent >= 90:
		return ToneSuccess
	case percent >= 70:
		return ToneInfo
	case percent >= 50:
		return ToneWarning
	default:
		return ToneDanger
	}
}

func HealthTone(status string) Tone {
	switch status {
	case model.StatusHealthy, model.StatusNormal, model.StatusVeryFast, model.StatusFast:
		return ToneSuccess
	case model.StatusAttention, model.StatusSlightlySlow:
		return ToneWarning
	case model.StatusAbnormal, model.StatusError:
		return ToneDanger
	default:
		return ToneSecondary
	}
}

func ConnectionTone(state model.ConnectionState) Tone {
	switch state {
	case model.ConnectionLiveReal:
		return ToneSuccess
	case model.ConnectionLiveDemo:
		return ToneWarning
	case model.ConnectionConnecting:
		return ToneInfo
	default:
		return ToneDanger
	}
}
