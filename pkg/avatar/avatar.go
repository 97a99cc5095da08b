// Package avatar picks and loads the images drawn inside tree nodes.
//
// A person with an explicit avatar reference keeps it. Everyone else gets a
// stock image from a per-gender preset list, chosen by [Pick] as a pure
// function of the person's id and normalized gender: the same id always maps
// to the same preset, across processes and without stored state.
//
// For raster output the SVG must be self-contained, so [Inliner] turns
// avatar references into data URIs and substitutes a fallback preset when an
// image cannot be loaded.
package avatar

import (
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/matzehuels/kintree/pkg/persona"
)

// DefaultFallback is the image used when an avatar fails to load.
const DefaultFallback = "/presets/m1.png"

// Presets maps a gender key ("M", "F", "Otro") to its stock images.
type Presets map[string][]string

// DefaultPresets returns the bundled preset lists, five images per gender.
func DefaultPresets() Presets {
	return Presets{
		string(persona.GenderMale):   {"/presets/m1.png", "/presets/m2.png", "/presets/m3.png", "/presets/m4.png", "/presets/m5.png"},
		string(persona.GenderFemale): {"/presets/f1.png", "/presets/f2.png", "/presets/f3.png", "/presets/f4.png", "/presets/f5.png"},
		string(persona.GenderOther):  {"/presets/o1.png", "/presets/o2.png", "/presets/o3.png", "/presets/o4.png", "/presets/o5.png"},
	}
}

// List returns the images for g, falling back to the Otro list only when g
// has no entry. A configured empty list means no preset for that gender.
func (p Presets) List(g persona.Gender) []string {
	if list, ok := p[string(g)]; ok {
		return list
	}
	return p[string(persona.GenderOther)]
}

// Hash sums the UTF-16 code units of id.
func Hash(id string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(id)) {
		sum += int(u)
	}
	return sum
}

// Pick returns the preset for an id and a free-form gender value, or "" when
// no list applies.
func Pick(id, gender string, presets Presets) string {
	list := presets.List(persona.GenderKey(gender))
	if len(list) == 0 {
		return ""
	}
	return list[Hash(id)%len(list)]
}

// Resolve returns the person's explicit avatar, or a preset picked by
// [Pick]. An empty result means the node is drawn without an image.
func Resolve(p persona.Person, presets Presets) string {
	if p.HasAvatar() {
		return p.Avatar
	}
	return Pick(p.ID, p.Gender, presets)
}

// Absolute prefixes a root-relative reference such as "/uploads/1.png" with
// base, keeping any path base carries. Other relative references are
// resolved against base. References that already carry a scheme are returned
// unchanged, as is everything when base is empty.
func Absolute(ref, base string) string {
	if ref == "" || base == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return strings.TrimSuffix(base, "/") + ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}
