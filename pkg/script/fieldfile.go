package script

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"memo.elv.sh/pkg/computed"
	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/track"
	"memo.elv.sh/pkg/vals"
)

// fieldSpec is the YAML form of a field definition. Exactly one of the
// operations must be given.
type fieldSpec struct {
	Path     string     `yaml:"path"`
	Sum      []string   `yaml:"sum"`
	Len      string     `yaml:"len"`
	Join     *joinSpec  `yaml:"join"`
	Scale    *scaleSpec `yaml:"scale"`
	Not      string     `yaml:"not"`
	Writable *bool      `yaml:"writable"`
}

type joinSpec struct {
	Path string `yaml:"path"`
	Sep  string `yaml:"sep"`
}

type scaleSpec struct {
	Path string `yaml:"path"`
	By   any    `yaml:"by"`
}

var knownKeys = map[string]bool{
	"path": true, "sum": true, "len": true, "join": true, "scale": true,
	"not": true, "writable": true,
}

var (
	errNotMapping    = errors.New("must be a mapping")
	errNoOperation   = errors.New("must have exactly one of path, sum, len, join, scale, not")
	errScaleByNumber = errors.New("scale.by must be a non-zero number")
)

// FieldError is returned by ParseFields for an invalid field definition.
type FieldError struct {
	Name string
	Line int
	Err  error
}

func (e *FieldError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("line %d: field definitions %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: field %q: %v", e.Line, e.Name, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseFields parses a YAML document mapping field names to definitions.
// The fields are returned in the order they appear in the document. An empty
// document defines no fields.
func ParseFields(src []byte) ([]computed.Named, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, &FieldError{Line: m.Line, Err: errNotMapping}
	}
	var defs []computed.Named
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		def, err := parseField(v)
		if err != nil {
			return nil, &FieldError{k.Value, k.Line, err}
		}
		defs = append(defs, computed.Named{Name: k.Value, Def: def})
	}
	return defs, nil
}

func parseField(v *yaml.Node) (computed.Def, error) {
	if v.Kind != yaml.MappingNode {
		return nil, errNotMapping
	}
	for i := 0; i < len(v.Content); i += 2 {
		if key := v.Content[i].Value; !knownKeys[key] {
			return nil, fmt.Errorf("unknown key %q", key)
		}
	}
	var spec fieldSpec
	if err := v.Decode(&spec); err != nil {
		return nil, err
	}

	var fields []computed.Field
	if spec.Path != "" {
		fields = append(fields, pathField(spec.Path))
	}
	if spec.Sum != nil {
		fields = append(fields, sumField(spec.Sum))
	}
	if spec.Len != "" {
		fields = append(fields, lenField(spec.Len))
	}
	if spec.Join != nil {
		fields = append(fields, joinField(spec.Join.Path, spec.Join.Sep))
	}
	if spec.Scale != nil {
		f, err := scaleField(spec.Scale.Path, spec.Scale.By)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if spec.Not != "" {
		fields = append(fields, notField(spec.Not))
	}
	if len(fields) != 1 {
		return nil, errNoOperation
	}

	f := fields[0]
	if spec.Writable != nil && !*spec.Writable {
		f.Set = nil
	}
	return f, nil
}

// pathField is an alias of the value at a path.
func pathField(p string) computed.Field {
	path := state.ParsePath(p)
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			return s.Path(path).Get()
		},
		Set: func(t *state.Tree, v any) error {
			return t.Set(path, v)
		},
	}
}

// sumField adds up the numbers at some paths. It is read-only.
func sumField(paths []string) computed.Field {
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			var total any = 0
			for _, p := range paths {
				n, err := number(s.At(p))
				if err != nil {
					return nil, err
				}
				total = add(total, n)
			}
			return total, nil
		},
	}
}

// lenField is the length of the container at a path. It only depends on the
// shape of the container. It is read-only.
func lenField(p string) computed.Field {
	path := state.ParsePath(p)
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			return s.Path(path).Len(), nil
		},
	}
}

// joinField joins the strings in the container at a path. Setting it splits
// the value and stores the parts as a list.
func joinField(p, sep string) computed.Field {
	path := state.ParsePath(p)
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			var parts []string
			var err error
			s.Path(path).Each(func(_ any, elem track.Node) bool {
				var part string
				part, err = elem.Str()
				parts = append(parts, part)
				return err == nil
			})
			if err != nil {
				return nil, err
			}
			return strings.Join(parts, sep), nil
		},
		Set: func(t *state.Tree, v any) error {
			str, ok := v.(string)
			if !ok {
				return &vals.WrongType{WantKind: "string", GotKind: vals.Kind(v)}
			}
			list := []any{}
			if str != "" {
				for _, part := range strings.Split(str, sep) {
					list = append(list, part)
				}
			}
			return t.Set(path, list)
		},
	}
}

// scaleField is the number at a path multiplied by a constant. Setting it
// stores the value divided by the constant.
func scaleField(p string, by any) (computed.Field, error) {
	switch by := by.(type) {
	case int:
		if by == 0 {
			return computed.Field{}, errScaleByNumber
		}
	case float64:
		if by == 0 {
			return computed.Field{}, errScaleByNumber
		}
	default:
		return computed.Field{}, errScaleByNumber
	}
	path := state.ParsePath(p)
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			n, err := number(s.Path(path))
			if err != nil {
				return nil, err
			}
			return mul(n, by), nil
		},
		Set: func(t *state.Tree, v any) error {
			if !isNumber(v) {
				return &vals.WrongType{WantKind: "number", GotKind: vals.Kind(v)}
			}
			return t.Set(path, div(v, by))
		},
	}, nil
}

// notField is the negation of the bool at a path. Setting it stores the
// negation of the value.
func notField(p string) computed.Field {
	path := state.ParsePath(p)
	return computed.Field{
		Get: func(s track.Node) (any, error) {
			b, err := s.Path(path).Bool()
			return !b, err
		},
		Set: func(t *state.Tree, v any) error {
			b, ok := v.(bool)
			if !ok {
				return &vals.WrongType{WantKind: "bool", GotKind: vals.Kind(v)}
			}
			return t.Set(path, !b)
		},
	}
}
