package cdecl

import (
	"encoding/json"
	"fmt"

	"cscan/internal/lexer"
)

// Summaries are cached and exported as JSON, and a TypeExpr field cannot be
// decoded back into an interface without knowing the concrete variant. Each
// variant therefore marshals with a "kind" tag, and unmarshalType rebuilds
// the tree from it.

func (t Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{"primitive", t.Name})
}

func (t Named) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Tag  string `json:"tag,omitempty"`
		Name string `json:"name"`
	}{"named", t.Tag, t.Name})
}

func (t Pointer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		To   TypeExpr `json:"to"`
	}{"pointer", t.To})
}

func (t Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		Of   TypeExpr `json:"of"`
		Size int      `json:"size"`
	}{"array", t.Of, t.Size})
}

func (t Func) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string      `json:"kind"`
		Return   TypeExpr    `json:"return"`
		Params   []Parameter `json:"params,omitempty"`
		Variadic bool        `json:"variadic,omitempty"`
	}{"func", t.Return, t.Params, t.Variadic})
}

// typeEnvelope is the union of every variant's serialized fields.
type typeEnvelope struct {
	Kind     string          `json:"kind"`
	Tag      string          `json:"tag"`
	Name     string          `json:"name"`
	To       json.RawMessage `json:"to"`
	Of       json.RawMessage `json:"of"`
	Size     int             `json:"size"`
	Return   json.RawMessage `json:"return"`
	Params   []Parameter     `json:"params"`
	Variadic bool            `json:"variadic"`
}

// unmarshalType decodes the tagged form produced by the MarshalJSON methods
// above. Missing or null input yields a nil TypeExpr.
func unmarshalType(data json.RawMessage) (TypeExpr, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env typeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "primitive":
		return Primitive{Name: env.Name}, nil
	case "named":
		return Named{Tag: env.Tag, Name: env.Name}, nil
	case "pointer":
		to, err := unmarshalType(env.To)
		if err != nil {
			return nil, err
		}
		return Pointer{To: to}, nil
	case "array":
		of, err := unmarshalType(env.Of)
		if err != nil {
			return nil, err
		}
		return Array{Of: of, Size: env.Size}, nil
	case "func":
		ret, err := unmarshalType(env.Return)
		if err != nil {
			return nil, err
		}
		return Func{Return: ret, Params: env.Params, Variadic: env.Variadic}, nil
	}
	return nil, fmt.Errorf("unknown type kind %q", env.Kind)
}

func (p *Parameter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ty, err := unmarshalType(raw.Type)
	if err != nil {
		return err
	}
	p.Name = raw.Name
	p.Type = ty
	return nil
}

func (f *FunctionDecl) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string          `json:"name"`
		Return       json.RawMessage `json:"return"`
		Params       []Parameter     `json:"params"`
		Variadic     bool            `json:"variadic"`
		IsDefinition bool            `json:"isDefinition"`
		Pos          lexer.Pos       `json:"pos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ret, err := unmarshalType(raw.Return)
	if err != nil {
		return err
	}
	*f = FunctionDecl{
		Name:         raw.Name,
		Return:       ret,
		Params:       raw.Params,
		Variadic:     raw.Variadic,
		IsDefinition: raw.IsDefinition,
		Pos:          raw.Pos,
	}
	return nil
}

func (t *TypeDecl) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		Kind       TypeDeclKind    `json:"kind"`
		Underlying json.RawMessage `json:"underlying"`
		Pos        lexer.Pos       `json:"pos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	underlying, err := unmarshalType(raw.Underlying)
	if err != nil {
		return err
	}
	*t = TypeDecl{Name: raw.Name, Kind: raw.Kind, Underlying: underlying, Pos: raw.Pos}
	return nil
}
