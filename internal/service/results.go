package service

import "github.com/elugabriel/interactive-assessment/internal/model"

// TopicBreakdown aggregates answer outcomes per topic. The data model
// carries no topic field on questions, so every record falls into one
// synthetic "General" bucket; a real per-topic breakdown needs a schema
// extension.
type TopicBreakdown struct {
	Topic   string `json:"topic"`
	Total   int    `json:"total"`
	Correct int    `json:"correct"`
}

// ResultsSummary is the aggregated score report for one exam instance.
type ResultsSummary struct {
	ExamID         int64            `json:"exam_id"`
	TotalScore     float64          `json:"total_score"`
	MaxScore       int              `json:"max_score"`
	CorrectCount   int              `json:"correct_count"`
	IncorrectCount int              `json:"incorrect_count"`
	Topics         []TopicBreakdown `json:"topics"`
}

// AggregateResults computes the summary over an exam's answer records:
// the maximum attainable score is the record count, and incorrect is
// everything that isn't correct.
func AggregateResults(answers []model.ExamAnswer) ResultsSummary {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	return ResultsSummary{
		MaxScore:       len(answers),
		CorrectCount:   correct,
		IncorrectCount: len(answers) - correct,
		Topics: []TopicBreakdown{
			{Topic: "General", Total: len(answers), Correct: correct},
		},
	}
}
