package model

import "encoding/json"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenomeID is assigned monotonically by the variation layer and is unique
// across both coevolving populations within a run.
type GenomeID int64

// Genome is an opaque unit of evolutionary content. The engine never looks
// inside Payload; decoding it into an evaluable phenome is a collaborator
// concern. Everything except Eval is immutable after creation.
type Genome struct {
	VersionedRecord
	ID         GenomeID        `json:"id"`
	BirthBatch int             `json:"birth_batch"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Eval       *EvalRecord     `json:"eval,omitempty"`
}

// EvalRecord is the mutable evaluation state attached to a genome.
type EvalRecord struct {
	Viable  bool    `json:"viable"`
	Trials  int     `json:"trials"`
	Fitness float64 `json:"fitness,omitempty"`
}

// TrialResult is the outcome of scoring one candidate phenome against one
// opponent phenome. ResourceCapped marks a successful trial whose opponent
// had already hit its usage limit; such trials count toward neither tally.
type TrialResult struct {
	OpponentID     GenomeID `json:"opponent_id"`
	Success        bool     `json:"success"`
	Objective      float64  `json:"objective"`
	SimSteps       int      `json:"sim_steps,omitempty"`
	ResourceCapped bool     `json:"resource_capped,omitempty"`
	Err            string   `json:"err,omitempty"`
}

// ViabilityRecord aggregates the trials of one candidate within one
// evaluation call. Err is set only when the candidate's genome could not be
// decoded, which excludes it from admission without failing the batch.
type ViabilityRecord struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Viable       bool          `json:"viable"`
	Trials       []TrialResult `json:"trials,omitempty"`
	Err          string        `json:"err,omitempty"`
}

// BestObjective returns the highest objective measure observed across the
// record's trials, or zero when no trial carries one.
func (r ViabilityRecord) BestObjective() float64 {
	best := 0.0
	for _, trial := range r.Trials {
		if trial.Objective > best {
			best = trial.Objective
		}
	}
	return best
}

// TrialLogRecord is the structured per-trial log entry handed to the logging
// collaborator.
type TrialLogRecord struct {
	Batch          int      `json:"batch"`
	Side           string   `json:"side"`
	CandidateID    GenomeID `json:"candidate_id"`
	OpponentID     GenomeID `json:"opponent_id"`
	Evaluation     int64    `json:"evaluation"`
	Success        bool     `json:"success"`
	Objective      float64  `json:"objective"`
	ResourceCapped bool     `json:"resource_capped,omitempty"`
}

// SideDiagnostics summarizes one side's share of a joint batch.
type SideDiagnostics struct {
	Produced  int `json:"produced"`
	Viable    int `json:"viable"`
	Admitted  int `json:"admitted"`
	QueueSize int `json:"queue_size"`
}

// BatchDiagnostics summarizes one completed joint batch.
type BatchDiagnostics struct {
	Batch       int             `json:"batch"`
	Evaluations int64           `json:"evaluations"`
	SideA       SideDiagnostics `json:"side_a"`
	SideB       SideDiagnostics `json:"side_b"`
}

// RunRecord is the archived metadata for one coevolution run.
type RunRecord struct {
	VersionedRecord
	ID             string `json:"id"`
	CreatedAtUTC   string `json:"created_at_utc"`
	Domain         string `json:"domain"`
	Seed           int64  `json:"seed"`
	MaxBatches     int    `json:"max_batches"`
	MaxEvaluations int64  `json:"max_evaluations"`
	Batches        int    `json:"batches"`
	Evaluations    int64  `json:"evaluations"`
	Outcome        string `json:"outcome"`
}

// PopulationSnapshot is the archived final population of one side.
type PopulationSnapshot struct {
	VersionedRecord
	RunID   string   `json:"run_id"`
	Side    string   `json:"side"`
	Batch   int      `json:"batch"`
	Genomes []Genome `json:"genomes"`
}
