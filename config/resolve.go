package config

import (
	"os"

	"github.com/goccy/go-yaml"
	goconfig "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/habiliai/tutorwise/errors"
)

func resolveConfig[T any](config *T, testing bool) error {
	if config == nil {
		return errors.New("config is nil")
	}

	configReader := goconfig.New()
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		configReader = configReader.AddFeeder(feeder.DotEnv{Path: ".env"})
	}

	if testing {
		filename := ".env.test"
		if v := os.Getenv("ENV_TEST_FILE"); v != "" {
			filename = v
		}
		if _, err := os.Stat(filename); !os.IsNotExist(err) {
			configReader = configReader.AddFeeder(feeder.DotEnv{Path: filename})
		}
	}

	if err := configReader.
		AddFeeder(feeder.Env{}).
		AddStruct(config).
		Feed(); err != nil {
		return errors.Wrapf(err, "failed to load config")
	}

	return nil
}

func loadYAMLFile(file string, out any) error {
	yamlBytes, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "failed to read file %s", file)
	}

	if err := yaml.Unmarshal(yamlBytes, out); err != nil {
		return errors.Wrapf(err, "failed to unmarshal file %s", file)
	}

	return nil
}
