package mcc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"syzygos/internal/model"
)

func TestPrintfTrialLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := PrintfTrialLogger{Logger: log.New(&buf, "", 0)}

	logger.LogTrial(model.TrialLogRecord{Batch: 2, Side: "a", CandidateID: 7, OpponentID: 9, Success: true, Objective: 0.5})
	logger.LogBatch(model.BatchDiagnostics{Batch: 2, Evaluations: 40})

	out := buf.String()
	if !strings.Contains(out, "candidate=7") || !strings.Contains(out, "opponent=9") {
		t.Fatalf("trial line missing ids: %q", out)
	}
	if !strings.Contains(out, "evaluations=40") {
		t.Fatalf("batch line missing counter: %q", out)
	}
}

func TestMultiTrialLoggerFansOut(t *testing.T) {
	first := &RecordingTrialLogger{}
	second := &RecordingTrialLogger{}
	multi := MultiTrialLogger{first, second}

	multi.LogTrial(model.TrialLogRecord{Batch: 1, CandidateID: 3})
	multi.LogBatch(model.BatchDiagnostics{Batch: 1})

	for i, recorder := range []*RecordingTrialLogger{first, second} {
		if len(recorder.Trials()) != 1 || len(recorder.Batches()) != 1 {
			t.Fatalf("logger %d missed records", i)
		}
	}
}
