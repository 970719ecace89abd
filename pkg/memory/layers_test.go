package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

func TestClassifyLayer(t *testing.T) {
	testCases := []struct {
		name       string
		weight     float64
		confidence float64
		want       storage.Layer
	}{
		{"strong and certain", 2.0, 0.9, storage.LayerLongTerm},
		{"exactly at long-term boundary", 1.5, 0.71, storage.LayerLongTerm},
		{"confidence exactly 0.7 is not long-term", 1.5, 0.7, storage.LayerShortTerm},
		{"heavy but collapsed confidence", 2.0, 0.2, storage.LayerFaded},
		{"short-term weight boundary", 0.7, 0.5, storage.LayerShortTerm},
		{"just under short-term weight", 0.69, 0.5, storage.LayerFaded},
		{"confidence exactly 0.3 with enough weight", 1.0, 0.3, storage.LayerShortTerm},
		{"confidence just under 0.3", 1.0, 0.29, storage.LayerFaded},
		{"weak and uncertain", 0.3, 0.5, storage.LayerFaded},
		{"max weight full confidence", 3.0, 1.0, storage.LayerLongTerm},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := memory.ClassifyLayer(tc.weight, tc.confidence)
			assert.Equal(t, tc.want, got)
		})
	}
}
