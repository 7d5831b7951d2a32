package param

// Category is the semantic group a parameter is filed under
type Category string

const (
	CategoryExposure   Category = "exposure"
	CategoryColor      Category = "color"
	CategoryGamma      Category = "gamma"
	CategoryContrast   Category = "contrast"
	CategorySaturation Category = "saturation"
	CategoryEffects    Category = "effects"
	CategoryGeometry   Category = "geometry"
	CategoryCurves     Category = "curves"
	CategoryOther      Category = "other"
)

var categoryDisplayNames = map[Category]string{
	CategoryExposure:   "Exposure",
	CategoryColor:      "Color",
	CategoryGamma:      "Gamma",
	CategoryContrast:   "Contrast",
	CategorySaturation: "Saturation",
	CategoryEffects:    "Effects",
	CategoryGeometry:   "Geometry",
	CategoryCurves:     "Curves",
	CategoryOther:      "Other",
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	_, ok := categoryDisplayNames[c]
	return ok
}

// DisplayName returns the human readable group title
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return categoryDisplayNames[CategoryOther]
}

// UIType is the control tag used inside a declaration call
type UIType string

const (
	UISliderFloat UIType = "DCTLUI_SLIDER_FLOAT"
	UISliderInt   UIType = "DCTLUI_SLIDER_INT"
	UICheckBox    UIType = "DCTLUI_CHECK_BOX"
	UIComboBox    UIType = "DCTLUI_COMBO_BOX"
	UIValueBox    UIType = "DCTLUI_VALUE_BOX"
)

// Valid reports whether t is one of the five declaration tags
func (t UIType) Valid() bool {
	switch t {
	case UISliderFloat, UISliderInt, UICheckBox, UIComboBox, UIValueBox:
		return true
	}
	return false
}

// Marker is the declaration call that introduces a UI parameter in script source
const Marker = "DEFINE_UI_PARAMS"
