// Package payouts parses the sidecar staking-payouts document and sums the
// unclaimed rewards it describes.
package payouts

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Field is an optional value decoded from a loosely typed JSON object.
// Present is true only when the key exists, is not null and holds the
// expected type.
type Field[T any] struct {
	Value   T
	Present bool
}

func present[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Entry is one validator or nominator payout within an era.
type Entry struct {
	ValidatorID string
	Amount      Field[float64] // nominatorStakingPayout
	Claimed     Field[bool]
}

// Eligible reports whether the entry counts toward the unclaimed total.
func (e Entry) Eligible() bool {
	return e.Amount.Present && e.Claimed.Present && !e.Claimed.Value
}

// EraTotal is the per-era contribution to a Summary.
type EraTotal struct {
	Index   int           `json:"index"`
	Era     Field[uint64] `json:"-"`
	Label   string        `json:"era"`
	Entries int           `json:"entries"`
	Counted int           `json:"counted"`
	Total   float64       `json:"total"`
	Skipped bool          `json:"skipped,omitempty"`
}

// Outcome describes how an aggregation finished.
type Outcome int

const (
	OutcomeComplete Outcome = iota
	OutcomeNoEras
	OutcomeNoPayoutsForDepth
	OutcomeEmptyEra
	OutcomeMissingPayouts
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeNoEras:
		return "no-eras"
	case OutcomeNoPayoutsForDepth:
		return "no-payouts-for-depth"
	case OutcomeEmptyEra:
		return "empty-era"
	case OutcomeMissingPayouts:
		return "missing-payouts-array"
	default:
		return "unknown"
	}
}

// Stopped reports whether the era walk ended before the last record.
func (o Outcome) Stopped() bool {
	return o == OutcomeEmptyEra || o == OutcomeMissingPayouts
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Summary is the result of aggregating one payouts document.
type Summary struct {
	Total       float64    `json:"total"`
	Outcome     Outcome    `json:"outcome"`
	Eras        []EraTotal `json:"eras"`
	SkippedEras int        `json:"skippedEras,omitempty"`
	// StoppedAt is the index of the era record that ended a strict walk.
	StoppedAt  int    `json:"stoppedAt,omitempty"`
	StoppedEra string `json:"stoppedEra,omitempty"`
}

var null = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), null)
}

// decodeArray returns the elements of raw when it is a JSON array.
// null, objects and scalars report false.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

// decodeObject returns the members of raw when it is a JSON object.
func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// amountField accepts a JSON number or a decimal string. The sidecar encodes
// balances as strings, test fixtures and older versions use numbers.
func amountField(raw json.RawMessage, ok bool) Field[float64] {
	if !ok || isNull(raw) {
		return Field[float64]{}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return present(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Field[float64]{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Field[float64]{}
	}
	f, _ = d.Float64()
	return present(f)
}

func boolField(raw json.RawMessage, ok bool) Field[bool] {
	if !ok || isNull(raw) {
		return Field[bool]{}
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return Field[bool]{}
	}
	return present(b)
}

func stringField(raw json.RawMessage, ok bool) Field[string] {
	if !ok || isNull(raw) {
		return Field[string]{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Field[string]{}
	}
	return present(s)
}

// eraField reads the era number, which the sidecar may send as a number or a
// numeric string.
func eraField(raw json.RawMessage, ok bool) Field[uint64] {
	if !ok || isNull(raw) {
		return Field[uint64]{}
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return present(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Field[uint64]{}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Field[uint64]{}
	}
	return present(n)
}

func parseEntry(raw json.RawMessage) Entry {
	obj, ok := decodeObject(raw)
	if !ok {
		return Entry{}
	}
	amount, hasAmount := obj["nominatorStakingPayout"]
	claimed, hasClaimed := obj["claimed"]
	validator, hasValidator := obj["validatorId"]
	return Entry{
		ValidatorID: stringField(validator, hasValidator).Value,
		Amount:      amountField(amount, hasAmount),
		Claimed:     boolField(claimed, hasClaimed),
	}
}
