package persona

import "strings"

// Gender is the normalized gender category used to pick preset avatars.
type Gender string

// Gender categories. The values double as preset list keys.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "Otro"
)

// GenderKey normalizes a free-form gender value. Matching is trimmed and
// case-insensitive: "m"/"masculino" map to M, "f"/"femenino" to F, and
// everything else (including empty) to Otro.
func GenderKey(v string) Gender {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "m", "masculino":
		return GenderMale
	case "f", "femenino":
		return GenderFemale
	default:
		return GenderOther
	}
}
