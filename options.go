package bufhub

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Options configures a Hub. Loadable from the map form of a yaml options file.
//
type Options struct {
	i Instrument
}

func DefaultOptions() *Options {
	return &Options{}
}

func (self *Options) SetInstrument(i Instrument) {
	self.i = i
}

// Load populates the options from a yaml-derived map, cleaned up with cf.MapIToMapS.
func (self *Options) Load(data map[string]interface{}) error {
	if v, found := data["instrument"]; found {
		if submap, ok := v.(map[string]interface{}); ok {
			var config map[string]interface{}
			if v, found := submap["config"]; found {
				if c, ok := v.(map[string]interface{}); ok {
					config = c
				} else {
					return errors.New("invalid 'instrument/config' value")
				}
			}
			if v, found := submap["name"]; found {
				if name, ok := v.(string); ok {
					i, err := NewInstrument(name, config)
					if err != nil {
						return errors.Wrap(err, "error creating instrument")
					}
					self.i = i
				} else {
					return errors.New("invalid 'instrument/name' value")
				}
			} else {
				return errors.New("missing 'instrument/name'")
			}
		} else {
			return errors.Errorf("invalid 'instrument' value [%v]", reflect.TypeOf(v))
		}
	}
	return nil
}

func (self *Options) Dump() string {
	out := "bufhub.Options{\n"
	out += fmt.Sprintf("\t%-20s %v\n", "instrument", reflect.TypeOf(self.i))
	out += "}"
	return out
}
