package features

// Canonical feature column names. The ordering fixed at training time is what
// every downstream model consumes; see Preprocessor.
const (
	ColAge                   = "age"
	ColSex                   = "sex"
	ColCholesterol           = "cholesterol"
	ColSystolicBP            = "systolic_bp"
	ColDiastolicBP           = "diastolic_bp"
	ColHeartRate             = "heart_rate"
	ColDiabetes              = "diabetes"
	ColFamilyHistory         = "family_history"
	ColSmoking               = "smoking"
	ColObesity               = "obesity"
	ColAlcohol               = "alcohol_consumption"
	ColExerciseHours         = "exercise_hours_per_week"
	ColDiet                  = "diet"
	ColPreviousHeartProblems = "previous_heart_problems"
	ColMedicationUse         = "medication_use"
	ColStressLevel           = "stress_level"
	ColSedentaryHours        = "sedentary_hours_per_day"
	ColIncome                = "income"
	ColBMI                   = "bmi"
	ColTriglycerides         = "triglycerides"
	ColActivityDays          = "physical_activity_days_per_week"
	ColSleepHours            = "sleep_hours_per_day"
)

// CanonicalColumns is the default training-time column order.
var CanonicalColumns = []string{
	ColAge, ColSex, ColCholesterol, ColSystolicBP, ColDiastolicBP,
	ColHeartRate, ColDiabetes, ColFamilyHistory, ColSmoking, ColObesity,
	ColAlcohol, ColExerciseHours, ColDiet, ColPreviousHeartProblems,
	ColMedicationUse, ColStressLevel, ColSedentaryHours, ColIncome,
	ColBMI, ColTriglycerides, ColActivityDays, ColSleepHours,
}

// CategoricalColumns lists the columns that require label encoding.
var CategoricalColumns = []string{ColSex, ColDiet}

// FeatureVector is one patient record with a fixed field set. It is a value
// type; the With* constructors return modified copies and never alias the
// receiver, which keeps counterfactual simulation free of accidental sharing.
type FeatureVector struct {
	Age                   int     `json:"age"`
	Sex                   string  `json:"sex"`
	Cholesterol           float64 `json:"cholesterol"`
	SystolicBP            float64 `json:"systolic_bp"`
	DiastolicBP           float64 `json:"diastolic_bp"`
	HeartRate             float64 `json:"heart_rate"`
	Diabetes              int     `json:"diabetes"`
	FamilyHistory         int     `json:"family_history"`
	Smoking               int     `json:"smoking"`
	Obesity               int     `json:"obesity"`
	Alcohol               int     `json:"alcohol_consumption"`
	ExerciseHours         float64 `json:"exercise_hours_per_week"`
	Diet                  string  `json:"diet"`
	PreviousHeartProblems int     `json:"previous_heart_problems"`
	MedicationUse         int     `json:"medication_use"`
	StressLevel           int     `json:"stress_level"`
	SedentaryHours        float64 `json:"sedentary_hours_per_day"`
	Income                float64 `json:"income"`
	BMI                   float64 `json:"bmi"`
	Triglycerides         float64 `json:"triglycerides"`
	ActivityDays          int     `json:"physical_activity_days_per_week"`
	SleepHours            float64 `json:"sleep_hours_per_day"`
}

// FromRecord builds a FeatureVector from a named-field record. Columns absent
// from the record default to zero values rather than failing, so a caller
// missing a non-essential field still gets a usable vector. Unknown keys are
// ignored.
func FromRecord(rec map[string]any) FeatureVector {
	v := FeatureVector{
		Age:                   asInt(rec[ColAge]),
		Sex:                   asString(rec[ColSex]),
		Cholesterol:           asFloat(rec[ColCholesterol]),
		SystolicBP:            asFloat(rec[ColSystolicBP]),
		DiastolicBP:           asFloat(rec[ColDiastolicBP]),
		HeartRate:             asFloat(rec[ColHeartRate]),
		Diabetes:              asInt(rec[ColDiabetes]),
		FamilyHistory:         asInt(rec[ColFamilyHistory]),
		Smoking:               asInt(rec[ColSmoking]),
		Obesity:               asInt(rec[ColObesity]),
		Alcohol:               asInt(rec[ColAlcohol]),
		ExerciseHours:         asFloat(rec[ColExerciseHours]),
		Diet:                  asString(rec[ColDiet]),
		PreviousHeartProblems: asInt(rec[ColPreviousHeartProblems]),
		MedicationUse:         asInt(rec[ColMedicationUse]),
		StressLevel:           asInt(rec[ColStressLevel]),
		SedentaryHours:        asFloat(rec[ColSedentaryHours]),
		Income:                asFloat(rec[ColIncome]),
		BMI:                   asFloat(rec[ColBMI]),
		Triglycerides:         asFloat(rec[ColTriglycerides]),
		ActivityDays:          asInt(rec[ColActivityDays]),
		SleepHours:            asFloat(rec[ColSleepHours]),
	}
	return v
}

// numeric returns the raw numeric value for a column, with categorical columns
// excluded (those go through the fitted encoders).
func (v FeatureVector) numeric(col string) (float64, bool) {
	switch col {
	case ColAge:
		return float64(v.Age), true
	case ColCholesterol:
		return v.Cholesterol, true
	case ColSystolicBP:
		return v.SystolicBP, true
	case ColDiastolicBP:
		return v.DiastolicBP, true
	case ColHeartRate:
		return v.HeartRate, true
	case ColDiabetes:
		return float64(v.Diabetes), true
	case ColFamilyHistory:
		return float64(v.FamilyHistory), true
	case ColSmoking:
		return float64(v.Smoking), true
	case ColObesity:
		return float64(v.Obesity), true
	case ColAlcohol:
		return float64(v.Alcohol), true
	case ColExerciseHours:
		return v.ExerciseHours, true
	case ColPreviousHeartProblems:
		return float64(v.PreviousHeartProblems), true
	case ColMedicationUse:
		return float64(v.MedicationUse), true
	case ColStressLevel:
		return float64(v.StressLevel), true
	case ColSedentaryHours:
		return v.SedentaryHours, true
	case ColIncome:
		return v.Income, true
	case ColBMI:
		return v.BMI, true
	case ColTriglycerides:
		return v.Triglycerides, true
	case ColActivityDays:
		return float64(v.ActivityDays), true
	case ColSleepHours:
		return v.SleepHours, true
	}
	return 0, false
}

// categorical returns the raw string value for an encoded column.
func (v FeatureVector) categorical(col string) (string, bool) {
	switch col {
	case ColSex:
		return v.Sex, true
	case ColDiet:
		return v.Diet, true
	}
	return "", false
}

// WithSmoking returns a copy with the smoking flag replaced.
func (v FeatureVector) WithSmoking(smoking int) FeatureVector {
	v.Smoking = smoking
	return v
}

// WithBMI returns a copy with the BMI replaced.
func (v FeatureVector) WithBMI(bmi float64) FeatureVector {
	v.BMI = bmi
	return v
}

// WithExerciseHours returns a copy with weekly exercise hours replaced.
func (v FeatureVector) WithExerciseHours(hours float64) FeatureVector {
	v.ExerciseHours = hours
	return v
}

// WithDiet returns a copy with the diet category replaced.
func (v FeatureVector) WithDiet(diet string) FeatureVector {
	v.Diet = diet
	return v
}

func asFloat(val any) float64 {
	switch x := val.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return 0
}

func asInt(val any) int {
	switch x := val.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	}
	return 0
}

func asString(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
