package core

import "maps"

// MedicalKey is the fixed primary key of the singleton medical record.
const MedicalKey = "profile"

// MedicalData maps a medical field name to its string value.
type MedicalData map[string]string

// Clone returns an independent copy of the mapping. A nil mapping clones to
// an empty one.
func (d MedicalData) Clone() MedicalData {
	out := make(MedicalData, len(d))
	maps.Copy(out, d)
	return out
}

// MedicalProfile is the singleton medical record.
// A profile that was never saved has an empty Data mapping and zero Modified.
type MedicalProfile struct {
	Data     MedicalData `json:"data"`
	Modified int64       `json:"modified"`
}

// Saved reports whether the profile has ever been persisted.
func (p MedicalProfile) Saved() bool {
	return p.Modified != 0
}
