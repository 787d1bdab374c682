package models

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// AdviceSchemaVersion identifies the set of advice categories understood by the gateway.
const AdviceSchemaVersion = "v1"

type AdviceCategory string

const (
	CategorySkillsToAdd         AdviceCategory = "skills_to_add"
	CategorySkillsToEmphasize   AdviceCategory = "skills_to_emphasize"
	CategoryResumeStructure     AdviceCategory = "resume_structure"
	CategoryContentOptimization AdviceCategory = "content_optimization"
	CategoryKeywordStrategy     AdviceCategory = "keyword_strategy"
	CategoryOverallPriority     AdviceCategory = "overall_priority"
)

// AdviceKind tags the variant held by an AdviceSection.
type AdviceKind string

const (
	AdviceKindList AdviceKind = "list"
	AdviceKindText AdviceKind = "text"
	AdviceKindRaw  AdviceKind = "raw"
)

var adviceSchema = []struct {
	category AdviceCategory
	kind     AdviceKind
}{
	{CategorySkillsToAdd, AdviceKindList},
	{CategorySkillsToEmphasize, AdviceKindList},
	{CategoryResumeStructure, AdviceKindList},
	{CategoryContentOptimization, AdviceKindList},
	{CategoryKeywordStrategy, AdviceKindText},
	{CategoryOverallPriority, AdviceKindList},
}

// AdviceSection is one category of advice. Exactly one of Items, Text or Raw
// is meaningful, selected by Kind.
type AdviceSection struct {
	Category AdviceCategory
	Kind     AdviceKind
	Items    []string
	Text     string
	Raw      any
}

func (s AdviceSection) value() any {
	switch s.Kind {
	case AdviceKindList:
		return s.Items
	case AdviceKindText:
		return s.Text
	default:
		return s.Raw
	}
}

// Advice is the typed form of the AI service's advice payload. Known
// categories are decoded into list or text sections; anything the schema
// does not recognise is preserved as a raw section.
type Advice struct {
	Version  string
	Sections []AdviceSection
}

// DecodeAdvice converts the loosely typed advice object into sections.
// A nil or empty object yields nil.
func DecodeAdvice(raw map[string]any) *Advice {
	if len(raw) == 0 {
		return nil
	}

	advice := &Advice{Version: AdviceSchemaVersion}
	seen := make(map[string]struct{}, len(raw))

	for _, entry := range adviceSchema {
		value, ok := raw[string(entry.category)]
		if !ok || value == nil {
			continue
		}
		seen[string(entry.category)] = struct{}{}
		advice.Sections = append(advice.Sections, decodeSection(entry.category, entry.kind, value))
	}

	var unknown []string
	for key, value := range raw {
		if _, ok := seen[key]; ok || value == nil {
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)

	for _, key := range unknown {
		advice.Sections = append(advice.Sections, AdviceSection{
			Category: AdviceCategory(key),
			Kind:     AdviceKindRaw,
			Raw:      raw[key],
		})
	}

	if len(advice.Sections) == 0 {
		return nil
	}

	return advice
}

func decodeSection(category AdviceCategory, kind AdviceKind, value any) AdviceSection {
	switch kind {
	case AdviceKindList:
		var items []string
		if err := mapstructure.WeakDecode(value, &items); err == nil {
			return AdviceSection{Category: category, Kind: AdviceKindList, Items: items}
		}
	case AdviceKindText:
		var text string
		if err := mapstructure.WeakDecode(value, &text); err == nil {
			return AdviceSection{Category: category, Kind: AdviceKindText, Text: text}
		}
	}

	return AdviceSection{Category: category, Kind: AdviceKindRaw, Raw: value}
}

// Section returns the section for a category, if present.
func (a *Advice) Section(category AdviceCategory) (AdviceSection, bool) {
	if a == nil {
		return AdviceSection{}, false
	}
	for _, s := range a.Sections {
		if s.Category == category {
			return s, true
		}
	}
	return AdviceSection{}, false
}

// MarshalJSON writes the sections back as an object keyed by category, in
// section order.
func (a Advice) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range a.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(s.Category))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.value())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Advice) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := DecodeAdvice(raw)
	if decoded == nil {
		*a = Advice{Version: AdviceSchemaVersion}
		return nil
	}
	*a = *decoded
	return nil
}
