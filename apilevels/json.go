package apilevels

import (
	"encoding/json"
	"io"
	"strconv"
)

type jsonClass struct {
	Class        string       `json:"class"`
	AddedIn      string       `json:"addedIn"`
	DeprecatedIn string       `json:"deprecatedIn,omitempty"`
	Methods      []jsonMethod `json:"methods"`
	Fields       []jsonField  `json:"fields"`
}

type jsonMethod struct {
	Method       string `json:"method"`
	AddedIn      string `json:"addedIn"`
	DeprecatedIn string `json:"deprecatedIn,omitempty"`
}

type jsonField struct {
	Field        string `json:"field"`
	AddedIn      string `json:"addedIn"`
	DeprecatedIn string `json:"deprecatedIn,omitempty"`
}

// WriteJSON renders the history as a JSON array of classes. Levels are
// labelled with versionNames when provided (level N maps to
// versionNames[N-1]); levels past the list render as plain numbers.
func WriteJSON(w io.Writer, api *Api, versionNames []string) error {
	label := func(level int) string {
		if level >= 1 && level <= len(versionNames) {
			return versionNames[level-1]
		}
		return strconv.Itoa(level)
	}

	classes := make([]jsonClass, 0, len(api.classes))
	for _, cls := range api.Classes() {
		if cls.Hidden() {
			continue
		}
		entry := jsonClass{
			Class:        cls.Name(),
			AddedIn:      label(cls.Since()),
			DeprecatedIn: labelNonZero(label, cls.DeprecatedIn()),
			Methods:      []jsonMethod{},
			Fields:       []jsonField{},
		}
		for _, m := range cls.Methods() {
			entry.Methods = append(entry.Methods, jsonMethod{
				Method:       m.Name(),
				AddedIn:      label(m.Since()),
				DeprecatedIn: labelNonZero(label, m.DeprecatedIn()),
			})
		}
		for _, f := range cls.Fields() {
			entry.Fields = append(entry.Fields, jsonField{
				Field:        f.Name(),
				AddedIn:      label(f.Since()),
				DeprecatedIn: labelNonZero(label, f.DeprecatedIn()),
			})
		}
		classes = append(classes, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(classes)
}

func labelNonZero(label func(int) string, level int) string {
	if level == 0 {
		return ""
	}
	return label(level)
}
