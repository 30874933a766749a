package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cardiorun/cardiorun/internal/features"
)

// headerAliases maps upstream dataset headers onto canonical column names. The
// original export uses title-cased headers; canonical snake_case is accepted
// as-is.
var headerAliases = map[string]string{
	"Age":                             features.ColAge,
	"Sex":                             features.ColSex,
	"Cholesterol":                     features.ColCholesterol,
	"Heart Rate":                      features.ColHeartRate,
	"Diabetes":                        features.ColDiabetes,
	"Family History":                  features.ColFamilyHistory,
	"Smoking":                         features.ColSmoking,
	"Obesity":                         features.ColObesity,
	"Alcohol Consumption":             features.ColAlcohol,
	"Exercise Hours Per Week":         features.ColExerciseHours,
	"Diet":                            features.ColDiet,
	"Previous Heart Problems":         features.ColPreviousHeartProblems,
	"Medication Use":                  features.ColMedicationUse,
	"Stress Level":                    features.ColStressLevel,
	"Sedentary Hours Per Day":         features.ColSedentaryHours,
	"Income":                          features.ColIncome,
	"BMI":                             features.ColBMI,
	"Triglycerides":                   features.ColTriglycerides,
	"Physical Activity Days Per Week": features.ColActivityDays,
	"Sleep Hours Per Day":             features.ColSleepHours,
}

// droppedColumns carry no predictive signal and are discarded on load.
var droppedColumns = map[string]struct{}{
	"Patient ID": {},
	"Country":    {},
	"Continent":  {},
	"Hemisphere": {},
}

const (
	bloodPressureHeader = "Blood Pressure"
	targetHeader        = "Heart Attack Risk"
	targetCanonical     = "heart_attack_risk"
)

// LoadCSV reads a labeled training table. The combined "158/88" blood-pressure
// column is split into systolic/diastolic; non-predictive identity and
// geography columns are dropped. A missing target column is
// ErrInsufficientData.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses dataset rows from a reader; see LoadCSV.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Field-count mismatches are handled per row below, same skip policy as
	// malformed values.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	targetIdx := -1
	bpIdx := -1
	colByIdx := make(map[int]string)
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case h == targetHeader || h == targetCanonical:
			targetIdx = i
		case h == bloodPressureHeader:
			bpIdx = i
		default:
			if _, drop := droppedColumns[h]; drop {
				continue
			}
			if canonical, ok := headerAliases[h]; ok {
				colByIdx[i] = canonical
			} else {
				colByIdx[i] = h // already canonical or unknown; FromRecord ignores unknowns
			}
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("target column %q: %w", targetHeader, ErrInsufficientData)
	}

	ds := &Dataset{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		if len(row) != len(header) {
			log.Warn().Int("row", line).Int("fields", len(row)).Int("expected", len(header)).
				Msg("skipping row with wrong field count")
			continue
		}

		rec := make(map[string]any, len(colByIdx)+2)
		for i, col := range colByIdx {
			rec[col] = parseCell(row[i])
		}
		if bpIdx >= 0 {
			sys, dia, err := parseBloodPressure(row[bpIdx])
			if err != nil {
				log.Warn().Int("row", line).Str("value", row[bpIdx]).Msg("skipping row with malformed blood pressure")
				continue
			}
			rec[features.ColSystolicBP] = sys
			rec[features.ColDiastolicBP] = dia
		}

		label, err := strconv.Atoi(strings.TrimSpace(row[targetIdx]))
		if err != nil {
			log.Warn().Int("row", line).Str("value", row[targetIdx]).Msg("skipping row with malformed target")
			continue
		}

		ds.Records = append(ds.Records, features.FromRecord(rec))
		ds.Labels = append(ds.Labels, label)
	}

	log.Info().Int("rows", ds.Len()).Msg("dataset loaded")
	return ds, nil
}

// parseBloodPressure splits a combined "systolic/diastolic" cell.
func parseBloodPressure(cell string) (sys, dia float64, err error) {
	parts := strings.SplitN(strings.TrimSpace(cell), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed blood pressure %q", cell)
	}
	sys, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, err
	}
	dia, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, err
	}
	return sys, dia, nil
}

// parseCell keeps numbers numeric and leaves everything else as a string for
// the categorical encoders.
func parseCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
