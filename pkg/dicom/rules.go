package dicom

import (
	"encoding/json"
	"fmt"

	"github.com/hantq/dwv.go/pkg/dicom/tag"
)

// Action selects what the writer does with an element.
type Action string

// Write-time element actions.
const (
	ActionCopy    Action = "copy"
	ActionRemove  Action = "remove"
	ActionClear   Action = "clear"
	ActionReplace Action = "replace"
)

// Rule pairs an action with its replacement value.
type Rule struct {
	Action Action
	Value  string
}

// UnmarshalJSON accepts either a bare action string ("Remove") or an
// object ({"action": "Replace", "value": "Anonymized"}).
func (r *Rule) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		action, err := parseAction(s)
		if err != nil {
			return err
		}
		r.Action = action
		return nil
	}
	var obj struct {
		Action string `json:"action"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	action, err := parseAction(obj.Action)
	if err != nil {
		return err
	}
	r.Action = action
	r.Value = obj.Value
	return nil
}

func parseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCopy, ActionRemove, ActionClear, ActionReplace:
		return Action(s), nil
	}
	switch s {
	case "Copy":
		return ActionCopy, nil
	case "Remove":
		return ActionRemove, nil
	case "Clear":
		return ActionClear, nil
	case "Replace":
		return ActionReplace, nil
	}
	return "", fmt.Errorf("unknown rule action %q", s)
}

// Rules maps a tag keyword, canonical tag key, group name, or the
// literal "default" to an action. Lookup priority per element: its own
// key or keyword first, then its dictionary group name, then "default".
type Rules map[string]Rule

// ParseRules loads a rules table from JSON.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return r, nil
}

// For returns the rule applying to an element.
func (r Rules) For(e *Element) Rule {
	if rule, ok := r[e.Key()]; ok {
		return rule
	}
	if kw := tag.KeywordOf(e.Tag); kw != "" {
		if rule, ok := r[kw]; ok {
			return rule
		}
	}
	if name := tag.GroupName(e.Tag.Group); name != "" {
		if rule, ok := r[name]; ok {
			return rule
		}
	}
	if rule, ok := r["default"]; ok {
		return rule
	}
	return Rule{Action: ActionCopy}
}

// Apply transforms a data set per the rules table, returning a new map,
// or ds itself when the table is empty. The input is not modified.
func (r Rules) Apply(ds *DataSet) *DataSet {
	if len(r) == 0 {
		return ds
	}
	out := NewDataSet()
	ds.Walk(func(e *Element) error {
		switch rule := r.For(e); rule.Action {
		case ActionRemove:
		case ActionClear:
			out.Set(&Element{Tag: e.Tag, VR: e.VR, VL: DefinedVL(0), Value: []string{}})
		case ActionReplace:
			out.Set(&Element{
				Tag:   e.Tag,
				VR:    e.VR,
				VL:    DefinedVL(uint32(len(rule.Value))),
				Value: []string{rule.Value},
			})
		default:
			out.Set(e)
		}
		return nil
	})
	return out
}
