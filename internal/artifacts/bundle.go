package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/model"
	"github.com/cardiorun/cardiorun/internal/train"
)

// Artifact file names inside a bundle directory. The set is load-bearing: a
// bundle is only usable when every member is present and consistent with the
// manifest.
const (
	manifestFile    = "manifest.json"
	modelFile       = "model.json"
	scalerFile      = "scaler.json"
	encodersFile    = "encoders.json"
	columnsFile     = "columns.json"
	performanceFile = "performance.json"
	importanceFile  = "importance.json"
)

const bundleVersion = 1

// Manifest describes one saved bundle. Written last during Save so its
// presence implies every other member landed.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	BestModel string    `json:"best_model"`
	UseScaled bool      `json:"use_scaled"`
	Files     []string  `json:"files"`
}

// Bundle is a loaded artifact set, reassembled as one unit at process start.
type Bundle struct {
	Manifest    Manifest
	Model       model.Classifier
	Scaler      *model.StandardScaler
	Encoders    map[string]*features.LabelEncoder
	Columns     []string
	Performance map[string]train.Metrics
	Importance  map[string][]float64
}

// Save persists a training result as one bundle: the selected classifier, the
// fitted preprocessing state, and the per-candidate performance and
// importance tables. Each file is written atomically, the manifest last.
func Save(dir string, res *train.Result) error {
	best := res.Best()
	if best == nil {
		return fmt.Errorf("training result has no selected model")
	}

	performance := make(map[string]train.Metrics, len(res.Candidates))
	importance := make(map[string][]float64)
	for _, c := range res.Candidates {
		performance[c.Name] = c.Metrics
		if c.Importance != nil {
			importance[c.Name] = c.Importance
		}
	}

	members := map[string]any{
		modelFile:       best.Model,
		scalerFile:      res.Scaler,
		encodersFile:    res.Encoders,
		columnsFile:     res.Columns,
		performanceFile: performance,
		importanceFile:  importance,
	}
	files := make([]string, 0, len(members))
	for name, v := range members {
		if err := writeJSONAtomic(filepath.Join(dir, name), v); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		files = append(files, name)
	}

	manifest := Manifest{
		Version:   bundleVersion,
		CreatedAt: time.Now().UTC(),
		BestModel: best.Name,
		UseScaled: best.UseScaled,
		Files:     files,
	}
	if err := writeJSONAtomic(filepath.Join(dir, manifestFile), manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	log.Info().Str("dir", dir).Str("best", best.Name).Msg("artifact bundle saved")
	return nil
}

// Load reads a bundle back as one atomic unit. Any missing or inconsistent
// member fails the whole load.
func Load(dir string) (*Bundle, error) {
	var manifest Manifest
	if err := readJSON(filepath.Join(dir, manifestFile), &manifest); err != nil {
		return nil, err
	}
	if manifest.Version != bundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", manifest.Version)
	}
	for _, name := range manifest.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("bundle member %s missing: %w", name, err)
		}
	}

	b := &Bundle{Manifest: manifest}

	clf, err := decodeModel(filepath.Join(dir, modelFile), manifest.BestModel)
	if err != nil {
		return nil, err
	}
	b.Model = clf

	b.Scaler = &model.StandardScaler{}
	if err := readJSON(filepath.Join(dir, scalerFile), b.Scaler); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, encodersFile), &b.Encoders); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, columnsFile), &b.Columns); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, performanceFile), &b.Performance); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, importanceFile), &b.Importance); err != nil {
		return nil, err
	}

	if _, ok := b.Performance[manifest.BestModel]; !ok {
		return nil, fmt.Errorf("manifest best model %q not in performance table", manifest.BestModel)
	}

	log.Info().Str("dir", dir).Str("best", manifest.BestModel).Msg("artifact bundle loaded")
	return b, nil
}

// decodeModel rebuilds the concrete classifier named by the manifest.
func decodeModel(path, name string) (model.Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", filepath.Base(path), err)
	}

	var clf model.Classifier
	switch name {
	case "logistic_regression":
		clf = &model.LogisticRegression{}
	case "random_forest":
		clf = &model.RandomForest{}
	case "gradient_boosting":
		clf = &model.GradientBoosting{}
	default:
		return nil, fmt.Errorf("unknown model type %q in manifest", name)
	}
	if err := json.Unmarshal(data, clf); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return clf, nil
}
