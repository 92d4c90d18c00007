package payouts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidResponseShape means the body is not a JSON object.
	ErrInvalidResponseShape = errors.New("invalid response shape")
	// ErrMissingPayoutsArray means an era record has no payouts array.
	// Under the strict policy it ends the walk.
	ErrMissingPayoutsArray = errors.New("era record has no payouts array")
)

// Policy controls what happens when an era record is empty or malformed.
type Policy int

const (
	// PolicyStrict stops at the first empty or malformed era record.
	PolicyStrict Policy = iota
	// PolicyLenient skips such records and keeps summing.
	PolicyLenient
)

func (p Policy) String() string {
	if p == PolicyLenient {
		return "lenient"
	}
	return "strict"
}

// ParsePolicy accepts "strict", "lenient" or an empty string (strict).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown aggregation policy %q (expected strict or lenient)", s)
	}
}

// Aggregate sums nominatorStakingPayout over unclaimed entries of a
// staking-payouts document. It is a pure function of its input.
//
// When ErrMissingPayoutsArray is returned the Summary still carries the total
// accumulated before the malformed record.
func Aggregate(raw []byte, policy Policy) (Summary, error) {
	doc, ok := decodeObject(raw)
	if !ok {
		return Summary{}, fmt.Errorf("%w: body is not a JSON object", ErrInvalidResponseShape)
	}

	erasRaw, found := doc["erasPayouts"]
	if !found {
		return Summary{Outcome: OutcomeNoPayoutsForDepth}, nil
	}
	eras, ok := decodeArray(erasRaw)
	if !ok {
		return Summary{Outcome: OutcomeNoPayoutsForDepth}, nil
	}
	if len(eras) == 0 {
		return Summary{Outcome: OutcomeNoEras}, nil
	}

	sum := Summary{Outcome: OutcomeComplete, Eras: make([]EraTotal, 0, len(eras))}
	for i, eraRaw := range eras {
		record, _ := decodeObject(eraRaw)
		eraNum, hasEra := record["era"]
		et := EraTotal{Index: i, Era: eraField(eraNum, hasEra)}
		et.Label = eraLabel(et)

		payoutsRaw, hasPayouts := record["payouts"]
		var entries []json.RawMessage
		if hasPayouts {
			entries, hasPayouts = decodeArray(payoutsRaw)
		}

		if !hasPayouts {
			if policy == PolicyStrict {
				sum.Outcome = OutcomeMissingPayouts
				sum.StoppedAt, sum.StoppedEra = i, et.Label
				return sum, fmt.Errorf("%w: era record %d (%s)", ErrMissingPayoutsArray, i, et.Label)
			}
			et.Skipped = true
			sum.SkippedEras++
			sum.Eras = append(sum.Eras, et)
			continue
		}

		if len(entries) == 0 {
			if policy == PolicyStrict {
				sum.Outcome = OutcomeEmptyEra
				sum.StoppedAt, sum.StoppedEra = i, et.Label
				return sum, nil
			}
			sum.Eras = append(sum.Eras, et)
			continue
		}

		et.Entries = len(entries)
		for _, entryRaw := range entries {
			entry := parseEntry(entryRaw)
			if !entry.Eligible() {
				continue
			}
			et.Counted++
			et.Total += entry.Amount.Value
			sum.Total += entry.Amount.Value
		}
		sum.Eras = append(sum.Eras, et)
	}

	return sum, nil
}

func eraLabel(et EraTotal) string {
	if et.Era.Present {
		return strconv.FormatUint(et.Era.Value, 10)
	}
	return "#" + strconv.Itoa(et.Index)
}
