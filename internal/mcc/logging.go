package mcc

import (
	"log"

	"syzygos/internal/model"
)

// PrintfTrialLogger writes human-readable trial and batch lines to a stdlib
// logger. Persistent recording goes through RecordingTrialLogger; this one
// is for watching a run as it happens.
type PrintfTrialLogger struct {
	Logger *log.Logger
}

func (l PrintfTrialLogger) LogTrial(record model.TrialLogRecord) {
	l.Logger.Printf("trial batch=%d side=%s candidate=%d opponent=%d success=%t objective=%.3f",
		record.Batch, record.Side, record.CandidateID, record.OpponentID, record.Success, record.Objective)
}

func (l PrintfTrialLogger) LogBatch(record model.BatchDiagnostics) {
	l.Logger.Printf("batch=%d evaluations=%d side_a=%d/%d side_b=%d/%d",
		record.Batch, record.Evaluations,
		record.SideA.Admitted, record.SideA.Produced,
		record.SideB.Admitted, record.SideB.Produced)
}

// MultiTrialLogger fans every record out to all listed loggers.
type MultiTrialLogger []TrialLogger

func (m MultiTrialLogger) LogTrial(record model.TrialLogRecord) {
	for _, l := range m {
		l.LogTrial(record)
	}
}

func (m MultiTrialLogger) LogBatch(record model.BatchDiagnostics) {
	for _, l := range m {
		l.LogBatch(record)
	}
}
