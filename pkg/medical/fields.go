// Package medical defines the fixed field set of the medical profile and
// the edit buffer used to fill it in.
package medical

import (
	"strings"

	"github.com/aretw0/biji/pkg/core"
)

// Field keys of the medical profile.
const (
	Name             = "name"
	Birthday         = "birthday"
	BloodType        = "bloodType"
	Weight           = "weight"
	Height           = "height"
	BMIField         = "bmi"
	Allergies        = "allergies"
	Medications      = "medications"
	Conditions       = "conditions"
	EmergencyContact = "emergencyContact"
	EmergencyPhone   = "emergencyPhone"
	Doctor           = "doctor"
	Insurance        = "insurance"
	Father           = "father"
	Mother           = "mother"
	Siblings         = "siblings"
	Spouse           = "spouse"
	Languages        = "languages"
)

// NotSet is displayed for absent or blank fields.
const NotSet = "(not set)"

// Field is one entry of the profile with its display label.
type Field struct {
	Key   string
	Label string
}

// Fields is the closed, ordered set of profile fields.
var Fields = []Field{
	{Name, "Name:"},
	{Birthday, "Birthday:"},
	{BloodType, "Blood Type:"},
	{Weight, "Weight (kg):"},
	{Height, "Height (cm):"},
	{BMIField, "BMI:"},
	{Allergies, "Allergies:"},
	{Medications, "Medications:"},
	{Conditions, "Conditions:"},
	{EmergencyContact, "Emergency Contact:"},
	{EmergencyPhone, "Emergency Phone:"},
	{Doctor, "Doctor:"},
	{Insurance, "Insurance:"},
	{Father, "Father:"},
	{Mother, "Mother:"},
	{Siblings, "Siblings:"},
	{Spouse, "Spouse:"},
	{Languages, "Languages:"},
}

// Known reports whether key is one of the profile fields.
func Known(key string) bool {
	for _, f := range Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the field keys in display order.
func Keys() []string {
	keys := make([]string, len(Fields))
	for i, f := range Fields {
		keys[i] = f.Key
	}
	return keys
}

// Normalize keeps only known fields and trims their values.
func Normalize(data core.MedicalData) core.MedicalData {
	out := make(core.MedicalData, len(Fields))
	for _, f := range Fields {
		if v, ok := data[f.Key]; ok {
			out[f.Key] = strings.TrimSpace(v)
		}
	}
	return out
}

// Display returns the value shown for key, or NotSet when it is blank.
func Display(data core.MedicalData, key string) string {
	if v := strings.TrimSpace(data[key]); v != "" {
		return v
	}
	return NotSet
}
