// Package persona defines the person record at the heart of kintree and the
// normalization rules applied to records coming from uploads and forms.
//
// A [Person] is a flat record: parent relationships are expressed as a list of
// parent ids rather than pointers, so lists can be edited, exported and
// re-imported without losing information. Turning the flat list into a tree
// is the job of package layout.
//
// JSON field names follow the wire format of the editor API (id, nombre,
// fecha_nacimiento, genero, padres, avatar).
package persona

import "slices"

// Person is a single genealogical record.
type Person struct {
	ID        string   `json:"id" bson:"id"`
	Name      string   `json:"nombre" bson:"nombre"`
	BirthDate string   `json:"fecha_nacimiento,omitempty" bson:"fecha_nacimiento,omitempty"`
	Gender    string   `json:"genero,omitempty" bson:"genero,omitempty"`
	Parents   []string `json:"padres" bson:"padres"`
	Avatar    string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (p Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// HasAvatar reports whether the person carries an explicit avatar reference.
func (p Person) HasAvatar() bool { return p.Avatar != "" }

// Clone returns a copy that shares no slices with p.
func (p Person) Clone() Person {
	p.Parents = slices.Clone(p.Parents)
	return p
}

// IDs returns the ids of people in input order.
func IDs(people []Person) []string {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	return ids
}

// Index maps each id to the position of its first occurrence in people.
func Index(people []Person) map[string]int {
	idx := make(map[string]int, len(people))
	for i, p := range people {
		if _, dup := idx[p.ID]; !dup {
			idx[p.ID] = i
		}
	}
	return idx
}
