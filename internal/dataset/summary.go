package dataset

import (
	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
)

const maxExamples = 3

type Summary struct {
	TotalRows int                  `json:"total_rows"`
	Scenarios int                  `json:"scenarios"`
	ByType    []scenario.TypeCount `json:"by_type"`
	Personas  map[string]int       `json:"personas"`
	Examples  []scenario.Scenario  `json:"examples"`
}

// Summarize describes the scenario library a workbook produces.
func Summarize(path string, log *logrus.Entry) (Summary, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithFields(logrus.Fields{"component": "dataset.summary", "path": path})
	log.Info("opening dataset for summarization")

	rows, err := ReadRows(path, log)
	if err != nil {
		log.WithError(err).Error("read failed")
		return Summary{}, err
	}
	s := summarizeRows(rows)
	log.WithFields(logrus.Fields{
		"total_rows": s.TotalRows,
		"scenarios":  s.Scenarios,
		"types":      len(s.ByType),
	}).Info("dataset summarization complete")
	return s, nil
}

func summarizeRows(rows []scenario.Row) Summary {
	scenarios := scenario.Build(rows)
	personas := map[string]int{}
	for _, sc := range scenarios {
		personas[scenario.Persona(sc)]++
	}
	examples := scenarios
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	return Summary{
		TotalRows: len(rows),
		Scenarios: len(scenarios),
		ByType:    scenario.CountByType(scenarios),
		Personas:  personas,
		Examples:  append([]scenario.Scenario{}, examples...),
	}
}
