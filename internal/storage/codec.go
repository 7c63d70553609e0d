package storage

import (
	"encoding/json"
	"errors"

	"syzygos/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func StampRun(run model.RunRecord) model.RunRecord {
	run.SchemaVersion = CurrentSchemaVersion
	run.CodecVersion = CurrentCodecVersion
	return run
}

func StampSnapshot(snapshot model.PopulationSnapshot) model.PopulationSnapshot {
	snapshot.SchemaVersion = CurrentSchemaVersion
	snapshot.CodecVersion = CurrentCodecVersion
	return snapshot
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeSnapshot(snapshot model.PopulationSnapshot) ([]byte, error) {
	return json.Marshal(snapshot)
}

func DecodeSnapshot(data []byte) (model.PopulationSnapshot, error) {
	var snapshot model.PopulationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PopulationSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.PopulationSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeBatchDiagnostics(diagnostics []model.BatchDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeBatchDiagnostics(data []byte) ([]model.BatchDiagnostics, error) {
	var diagnostics []model.BatchDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeTrialLog(trials []model.TrialLogRecord) ([]byte, error) {
	return json.Marshal(trials)
}

func DecodeTrialLog(data []byte) ([]model.TrialLogRecord, error) {
	var trials []model.TrialLogRecord
	if err := json.Unmarshal(data, &trials); err != nil {
		return nil, err
	}
	return trials, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
