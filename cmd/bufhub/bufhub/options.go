package bufhub

import (
	"io/ioutil"

	hub "github.com/openziti/bufhub"
	"github.com/openziti/bufhub/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// HubOptions builds hub options from the --options file, when one was given.
func HubOptions() (*hub.Options, error) {
	options := hub.DefaultOptions()
	if OptionsPath != "" {
		data, err := ioutil.ReadFile(OptionsPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read options file [%s]", OptionsPath)
		}
		dataMap := make(map[interface{}]interface{})
		if err := yaml.Unmarshal(data, dataMap); err != nil {
			return nil, errors.Wrapf(err, "unable to unmarshal options data [%s]", OptionsPath)
		}
		if err := options.Load(cf.MapIToMapS(dataMap)); err != nil {
			return nil, errors.Wrapf(err, "unable to load options [%s]", OptionsPath)
		}
	}
	if OptionsDump {
		logrus.Infof(options.Dump())
	}
	return options, nil
}
