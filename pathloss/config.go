package pathloss

import (
	"fmt"
	"reflect"

	ms "github.com/mitchellh/mapstructure"
	"github.com/wiless/coexist/station"
	"gonum.org/v1/gonum/mat"
)

var matrixType = reflect.TypeOf((*mat.Matrix)(nil)).Elem()

// ToMatrixHookFunc lets mapstructure fill mat.Matrix fields from plain
// numbers, flat lists (read as one row) and nested lists, whatever their
// element type: []interface{} from JSON or YAML, []int, []float64. Lists of
// booleans become a Mask.
func ToMatrixHookFunc() ms.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != matrixType {
			return data, nil
		}
		if _, ok := data.(mat.Matrix); ok {
			return data, nil
		}
		v := reflect.ValueOf(data)
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			var x float64
			if err := ms.WeakDecode(data, &x); err != nil {
				return nil, err
			}
			return Scalar(x), nil
		case reflect.Slice, reflect.Array:
			return listToMatrix(v)
		}
		return data, nil
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// listToMatrix picks the shape from the first element and the element type
// from the first leaf, then lets mapstructure convert every entry.
func listToMatrix(v reflect.Value) (mat.Matrix, error) {
	if v.Len() == 0 {
		return nil, fmt.Errorf("empty list")
	}
	leaf := indirect(v.Index(0))
	nested := isList(leaf)
	if nested {
		if leaf.Len() == 0 {
			return nil, fmt.Errorf("empty list")
		}
		leaf = indirect(leaf.Index(0))
	}
	data := v.Interface()

	switch {
	case nested && leaf.Kind() == reflect.Bool:
		var rows [][]bool
		if err := ms.WeakDecode(data, &rows); err != nil {
			return nil, err
		}
		return maskFromRows(rows)
	case nested:
		var rows [][]float64
		if err := ms.WeakDecode(data, &rows); err != nil {
			return nil, err
		}
		return denseFromRows(rows)
	case leaf.Kind() == reflect.Bool:
		var row []bool
		if err := ms.WeakDecode(data, &row); err != nil {
			return nil, err
		}
		return NewMask(1, len(row), row), nil
	}
	var row []float64
	if err := ms.WeakDecode(data, &row); err != nil {
		return nil, err
	}
	return Row(row...), nil
}

func maskFromRows(rows [][]bool) (mat.Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	m := NewMask(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("ragged rows")
		}
		for j, b := range row {
			m.Set(i, j, b)
		}
	}
	return m, nil
}

func denseFromRows(rows [][]float64) (mat.Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("ragged rows")
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

// DecodeLossParams reads the keyed form of a loss query: distance_3D,
// frequency, indoor_stations, shadowing, number_of_sectors, imt_sta_type,
// es_z and ue_height. Unknown keys and undecodable values are
// ConfigurationErrors.
func DecodeLossParams(kw map[string]interface{}) (LossParams, error) {
	var p LossParams
	dec, err := ms.NewDecoder(&ms.DecoderConfig{
		DecodeHook: ms.ComposeDecodeHookFunc(
			ToMatrixHookFunc(),
			station.StringToTypeHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(kw); err != nil {
		return p, &ConfigurationError{Reason: err.Error()}
	}
	return p, nil
}

// LossFromConfig is Loss driven by a keyed configuration, see DecodeLossParams
func (m *ClutterModel) LossFromConfig(kw map[string]interface{}) (*mat.Dense, error) {
	p, err := DecodeLossParams(kw)
	if err != nil {
		return nil, err
	}
	return m.Loss(p)
}
