// Package analytics computes portfolio-level statistics over a trade
// snapshot and its per-trade P/L map.
package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Weekday bucket statistics cover Monday through Friday only; weekend
// entries are dropped from bucketing by design. The five-slot arrays are
// indexed Monday-first (timeutil.WeekdayIndex) and serialize as
// Monday-first JSON objects, which consumers depend on.
var bucketDayNames = [5]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayCounts is a Mon-Fri bucketed counter.
type DayCounts [5]int

// DayAmounts is a Mon-Fri bucketed dollar sum.
type DayAmounts [5]float64

// WinLoss is a win/loss tally for one bucket.
type WinLoss struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// DayWinLoss is a Mon-Fri bucketed win/loss tally.
type DayWinLoss [5]WinLoss

func marshalDayObject(values [5]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range bucketDayNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", name)
		buf.Write(values[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d DayCounts) MarshalJSON() ([]byte, error) {
	var values [5]json.RawMessage
	for i, v := range d {
		values[i] = json.RawMessage(fmt.Sprintf("%d", v))
	}
	return marshalDayObject(values)
}

func (d DayAmounts) MarshalJSON() ([]byte, error) {
	var values [5]json.RawMessage
	for i, v := range d {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		values[i] = raw
	}
	return marshalDayObject(values)
}

func (d DayWinLoss) MarshalJSON() ([]byte, error) {
	var values [5]json.RawMessage
	for i, v := range d {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		values[i] = raw
	}
	return marshalDayObject(values)
}

// Millis is a duration serialized as fractional milliseconds, the unit the
// dashboard consumes for high-to-high timing stats.
type Millis time.Duration

func (m Millis) Duration() time.Duration { return time.Duration(m) }

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(time.Duration(m)) / float64(time.Millisecond))
}

func millisPtr(d *time.Duration) *Millis {
	if d == nil {
		return nil
	}
	m := Millis(*d)
	return &m
}

// Summary is the aggregate statistics structure handed to the presentation
// layer. Field names are part of the consumer contract.
type Summary struct {
	TotalProfitDollars float64 `json:"totalProfitDollars"`
	TotalCostDollars   float64 `json:"totalCostDollars"`
	TotalPercent       float64 `json:"totalPercent"`

	WinCount         int     `json:"winCount"`
	LossCount        int     `json:"lossCount"`
	WinRatio         float64 `json:"winRatio"`
	WeightedWinRatio float64 `json:"weightedWinRatio"`

	Calls     int `json:"calls"`
	Puts      int `json:"puts"`
	Swings    int `json:"swings"`
	SwingsDay int `json:"swingsDay"`
	ZeroDTE   int `json:"zeroDTE"`

	TradesByDay   DayCounts  `json:"tradesByDay"`
	WinLossByDay  DayWinLoss `json:"winLossByDay"`
	PLByDayBought DayAmounts `json:"plByDayBought"`
	PLByDaySold   DayAmounts `json:"plByDaySold"`

	AvgTimeBetweenHighs    *Millis `json:"avgTimeBetweenHighs"`
	MedianTimeBetweenHighs *Millis `json:"medianTimeBetweenHighs"`
	AvgHighToLow           *Millis `json:"avgHighToLow"`
	MedianHighToLow        *Millis `json:"medianHighToLow"`
}
