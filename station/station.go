// Package station holds the role tags shared by antenna and propagation models
package station

import (
	"fmt"
	"reflect"
	"strings"

	ms "github.com/mitchellh/mapstructure"
)

// Type identifies the kind of station at one end of a link
type Type int

var Types = [...]string{
	"NONE",
	"IMT_BS",
	"IMT_UE",
	"FSS_SS",
	"FSS_ES",
	"FS",
	"HAPS",
	"RNS",
	"RAS",
}

const (
	None Type = iota
	IMTBS
	IMTUE
	FSSSS
	FSSES
	FS
	HAPS
	RNS
	RAS
)

func (t Type) String() string {
	if t < 0 || int(t) >= len(Types) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return Types[t]
}

// IsIMT reports whether t is one of the IMT stations (BS or UE)
func (t Type) IsIMT() bool {
	return t == IMTBS || t == IMTUE
}

// ParseType matches name case-insensitively; '-' and ' ' are read as '_'
// and the bare "BS"/"UE" are taken as the IMT ones.
func ParseType(name string) (Type, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "BS":
		return IMTBS, nil
	case "UE":
		return IMTUE, nil
	}
	for i, s := range Types {
		if s == key {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("station: unknown station type %q", name)
}

// TxRx tells whether an antenna transmits or receives
type TxRx int

var TxRxModes = [...]string{
	"TX",
	"RX",
}

const (
	TX TxRx = iota
	RX
)

func (m TxRx) String() string {
	if m < 0 || int(m) >= len(TxRxModes) {
		return fmt.Sprintf("TxRx(%d)", int(m))
	}
	return TxRxModes[m]
}

func ParseTxRx(name string) (TxRx, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TX":
		return TX, nil
	case "RX":
		return RX, nil
	}
	return TX, fmt.Errorf("station: unknown tx/rx mode %q", name)
}

// StringToTypeHookFunc lets mapstructure decode "IMT_UE" style strings into Type
func StringToTypeHookFunc() ms.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(None) {
			return data, nil
		}
		return ParseType(data.(string))
	}
}

// StringToTxRxHookFunc lets mapstructure decode "TX"/"RX" into TxRx
func StringToTxRxHookFunc() ms.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(TX) {
			return data, nil
		}
		return ParseTxRx(data.(string))
	}
}
