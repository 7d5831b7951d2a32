package param

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type envelope struct {
	Type Kind `json:"type"`
}

// Decode reads one parameter object discriminated by its "type" field
func Decode(data []byte) (Parameter, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode parameter: %w", err)
	}

	var p Parameter
	switch env.Type {
	case KindSlider:
		p = &Slider{}
	case KindIntSlider:
		p = &IntSlider{}
	case KindCheckbox:
		p = &Checkbox{}
	case KindValueBox:
		p = &ValueBox{}
	case KindComboBox:
		p = &ComboBox{}
	case KindColor:
		p = &Color{}
	default:
		return nil, fmt.Errorf("unsupported parameter type: %q", env.Type)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s parameter: %w", env.Type, err)
	}
	return p, nil
}

// DecodeParameters reads a JSON array of parameters, or an object with a
// "parameters" array (the project form)
func DecodeParameters(data []byte) ([]Parameter, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var project struct {
			Parameters []json.RawMessage `json:"parameters"`
		}
		if perr := json.Unmarshal(data, &project); perr != nil {
			return nil, fmt.Errorf("failed to decode parameter list: %w", err)
		}
		items = project.Parameters
	}

	params := make([]Parameter, 0, len(items))
	for i, item := range items {
		p, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		params = append(params, p)
	}
	return params, nil
}

// Encode writes p as a plain object with its "type" discriminator
func Encode(p Parameter) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(p.Kind())
	fields["type"] = kind
	return json.Marshal(fields)
}

// EncodeParameters writes params as a JSON array
func EncodeParameters(params []Parameter) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		b, err := Encode(p)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return json.Marshal(items)
}

// NewDefault creates a freshly added control of the given kind
func NewDefault(kind Kind) (Parameter, error) {
	base := Common{
		ID:      uuid.NewString(),
		Name:    "param_" + uuid.NewString()[:6],
		Label:   "New " + string(kind),
		Enabled: true,
	}
	switch kind {
	case KindSlider:
		return &Slider{Common: base, Value: 0.5, Min: 0, Max: 1, Step: 0.01}, nil
	case KindCheckbox:
		return &Checkbox{Common: base, Value: true}, nil
	case KindIntSlider:
		return &IntSlider{Common: base, Value: 5, Min: 0, Max: 10}, nil
	case KindValueBox:
		return &ValueBox{Common: base, Value: 1.0}, nil
	case KindComboBox:
		return &ComboBox{
			Common:       base,
			Options:      []string{"OPT_1", "OPT_2"},
			OptionLabels: []string{"Option 1", "Option 2"},
		}, nil
	case KindColor:
		return &Color{Common: base, Value: RGB{R: 1, G: 1, B: 1}}, nil
	}
	return nil, fmt.Errorf("unsupported parameter type: %q", kind)
}
