package cli

import (
	"fmt"
	"os"

	"voice-coach-go/internal/config"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/dataset"
	"voice-coach-go/internal/llm"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
)

// app is the state shared by subcommands once configuration is loaded.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

func (a *app) load(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New()
	a.log.Logger.SetOutput(os.Stderr)
	a.log.Logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	return nil
}

// generator returns the LLM responder when it is enabled, nil otherwise.
func (a *app) generator() customer.Generator {
	if !a.cfg.UseGenerator() {
		return nil
	}
	return llm.New(a.cfg.LLMClientConfig(), llm.WithLogger(a.log.Entry))
}

// scenarios loads the library from path, or from the configured dataset.
// Without a dataset the library is empty and the default scenario is used.
func (a *app) scenarios(path string) ([]scenario.Scenario, error) {
	if path == "" {
		path = a.cfg.DatasetPath
	}
	if path == "" {
		return nil, nil
	}
	list, err := dataset.LoadScenarios(path, a.log.Entry)
	if err != nil {
		return nil, fmt.Errorf("load scenarios from %s: %w", path, err)
	}
	return list, nil
}
