package memory

import "github.com/amnesia-labs/amnesia-go/pkg/storage"

// Layer classification thresholds.
const (
	// ShortTermWeightThreshold is the minimum weight for short-term
	// classification.
	ShortTermWeightThreshold = 0.7

	// LongTermWeightThreshold is the minimum weight for long-term
	// classification.
	LongTermWeightThreshold = 1.5

	// FadedConfidenceThreshold is the confidence below which a record
	// fades.
	FadedConfidenceThreshold = 0.3

	// LongTermConfidenceThreshold is the confidence a record must
	// strictly exceed, together with sufficient weight, to be long-term.
	LongTermConfidenceThreshold = 0.7

	// PurgeConfidenceFloor is the confidence below which a record is
	// deleted on the next decay sweep.
	PurgeConfidenceFloor = 0.05
)

// ClassifyLayer assigns a memory layer from weight and confidence.
//
// The decision is ordered; the first matching rule wins:
//  1. weight >= 1.5 and confidence strictly > 0.7: long-term
//  2. confidence < 0.3: faded
//  3. weight >= 0.7: short-term
//  4. otherwise: faded
//
// Pure function: same inputs always yield the same layer. Callers must
// re-run it after every weight or confidence mutation so the cached
// layer field never drifts from the record's numbers.
func ClassifyLayer(weight, confidence float64) storage.Layer {
	switch {
	case weight >= LongTermWeightThreshold && confidence > LongTermConfidenceThreshold:
		return storage.LayerLongTerm
	case confidence < FadedConfidenceThreshold:
		return storage.LayerFaded
	case weight >= ShortTermWeightThreshold:
		return storage.LayerShortTerm
	default:
		return storage.LayerFaded
	}
}
