package medical

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/biji/pkg/core"
)

// BMI computes weight (kg) / (height (m))^2 rounded to two decimals.
// It returns "" when either value is missing, unparsable or not positive.
func BMI(weight, height string) string {
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil || !(w > 0) || math.IsInf(w, 1) {
		return ""
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if err != nil || !(h > 0) || math.IsInf(h, 1) {
		return ""
	}

	m := h / 100
	return strconv.FormatFloat(w/(m*m), 'f', 2, 64)
}

// Form is the edit buffer of the medical profile.
//
// BMI is recomputed whenever weight or height changes and is saved as
// whatever value the form holds at that time. A loaded profile keeps its
// stored BMI until one of its inputs is edited.
type Form struct {
	data core.MedicalData
}

// NewForm starts a form from stored data.
func NewForm(data core.MedicalData) *Form {
	return &Form{data: Normalize(data)}
}

// Set changes a field value.
func (f *Form) Set(key, value string) error {
	if !Known(key) {
		return &core.ValidationError{Err: fmt.Errorf("unknown medical field %q", key)}
	}
	if key == BMIField {
		return &core.ValidationError{Err: fmt.Errorf("%s is derived from weight and height", BMIField)}
	}

	f.data[key] = strings.TrimSpace(value)
	if key == Weight || key == Height {
		f.data[BMIField] = BMI(f.data[Weight], f.data[Height])
	}
	return nil
}

// Get returns the current value of a field.
func (f *Form) Get(key string) string {
	return f.data[key]
}

// Data returns a copy of the form contents, ready to be saved.
func (f *Form) Data() core.MedicalData {
	return f.data.Clone()
}
