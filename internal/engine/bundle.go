package engine

import (
	"github.com/cardiorun/cardiorun/internal/artifacts"
	"github.com/cardiorun/cardiorun/internal/features"
)

// SnapshotFromBundle rebuilds the serving snapshot from a loaded artifact
// bundle.
func SnapshotFromBundle(b *artifacts.Bundle) *Snapshot {
	return &Snapshot{
		ModelName:   b.Manifest.BestModel,
		Model:       b.Model,
		UseScaled:   b.Manifest.UseScaled,
		Scaler:      b.Scaler,
		Pre:         features.NewPreprocessor(b.Columns, b.Encoders),
		Importance:  b.Importance[b.Manifest.BestModel],
		Performance: b.Performance,
	}
}
