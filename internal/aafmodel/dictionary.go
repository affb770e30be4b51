package aafmodel

// ParameterDef declares an effect parameter in the definition dictionary.
type ParameterDef struct {
	Identification string `json:"identification"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	TypeName       string `json:"type_name,omitempty"`
}

// InterpolationDef declares a keyframe interpolation in the dictionary.
type InterpolationDef struct {
	Identification string `json:"identification"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
}

// Dictionary holds the definitions registered in a container. Registration
// is idempotent: re-registering an identification is a no-op.
type Dictionary struct {
	Operations     map[string]OperationDef
	Parameters     map[string]ParameterDef
	Interpolations map[string]InterpolationDef
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		Operations:     map[string]OperationDef{},
		Parameters:     map[string]ParameterDef{},
		Interpolations: map[string]InterpolationDef{},
	}
}

// RegisterOperation records an operation definition once.
func (d *Dictionary) RegisterOperation(def OperationDef) {
	if _, ok := d.Operations[def.Identification]; ok {
		return
	}
	d.Operations[def.Identification] = def
}

// RegisterParameter records a parameter definition once.
func (d *Dictionary) RegisterParameter(def ParameterDef) {
	if _, ok := d.Parameters[def.Identification]; ok {
		return
	}
	d.Parameters[def.Identification] = def
}

// RegisterInterpolation records an interpolation definition once.
func (d *Dictionary) RegisterInterpolation(def InterpolationDef) {
	if _, ok := d.Interpolations[def.Identification]; ok {
		return
	}
	d.Interpolations[def.Identification] = def
}
