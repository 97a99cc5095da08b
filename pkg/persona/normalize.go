package persona

import (
	"fmt"
	"strconv"
	"strings"
)

// Field aliases accepted in uploaded records, in lookup order.
var (
	idKeys        = []string{"id", "ID", "identificador"}
	nameKeys      = []string{"nombre", "name"}
	birthDateKeys = []string{"fecha_nacimiento", "dob", "fecha"}
	genderKeys    = []string{"genero", "sex", "gender"}
	parentKeys    = []string{"padres", "parents"}
	avatarKeys    = []string{"avatar"}
)

// ParentSeparator joins parent ids in flat formats such as CSV cells.
const ParentSeparator = ";"

// FromRecord builds a Person from a loosely typed record such as a decoded
// JSON object or a CSV row. The first non-empty alias wins for every field.
// When no id is present the record's position in the input is used.
func FromRecord(rec map[string]any, index int) Person {
	id := firstString(rec, idKeys)
	if id == "" {
		id = strconv.Itoa(index)
	}
	return Person{
		ID:        id,
		Name:      firstString(rec, nameKeys),
		BirthDate: firstString(rec, birthDateKeys),
		Gender:    firstString(rec, genderKeys),
		Parents:   firstParents(rec),
		Avatar:    firstString(rec, avatarKeys),
	}
}

// SplitParents splits a separator-joined parent list, trimming entries and
// dropping empty ones.
func SplitParents(s string) []string {
	parts := strings.Split(s, ParentSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinParents is the inverse of SplitParents.
func JoinParents(parents []string) string {
	return strings.Join(parents, ParentSeparator)
}

// Normalize cleans a hand-edited record: ids and parent ids are trimmed,
// empty parent entries dropped and the birth date converted to ISO form
// when it parses.
func Normalize(p Person) Person {
	p = p.Clone()
	p.ID = strings.TrimSpace(p.ID)
	p.BirthDate = NormalizeDate(p.BirthDate)
	parents := make([]string, 0, len(p.Parents))
	for _, id := range p.Parents {
		if id = strings.TrimSpace(id); id != "" {
			parents = append(parents, id)
		}
	}
	p.Parents = parents
	return p
}

func firstString(rec map[string]any, keys []string) string {
	for _, k := range keys {
		if s := stringify(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstParents(rec map[string]any) []string {
	for _, k := range parentKeys {
		switch v := rec[k].(type) {
		case nil:
			continue
		case string:
			if parents := SplitParents(v); len(parents) > 0 {
				return parents
			}
		case []string:
			if len(v) > 0 {
				return SplitParents(JoinParents(v))
			}
		case []any:
			parents := make([]string, 0, len(v))
			for _, item := range v {
				if s := stringify(item); s != "" {
					parents = append(parents, s)
				}
			}
			if len(parents) > 0 {
				return parents
			}
		default:
			if s := stringify(v); s != "" {
				return []string{s}
			}
		}
	}
	return []string{}
}

// stringify renders scalar record values as strings. Whole floats lose their
// fractional part so that JSON numbers like 1 become "1".
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
