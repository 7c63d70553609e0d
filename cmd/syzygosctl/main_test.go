package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunCommandWithConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "run.ini")
	contents := `
[run]
seed = 7
max_batches = 2
workers = 2

[navigators]
target_size = 8
batch_size = 3
seed_count = 3
bootstrap_size = 6
bootstrap_budget = 600

[arenas]
target_size = 8
batch_size = 3
seed_count = 3

[maze]
width = 9
height = 9
step_budget = 200
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := run(context.Background(), []string{"run", "-config", configPath, "-store", "memory"}); err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"teleport"}); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestMissingCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestQueryCommandsRequireRunID(t *testing.T) {
	ctx := context.Background()
	for _, command := range []string{"diagnostics", "population", "trials"} {
		if err := run(ctx, []string{command, "-store", "memory"}); err == nil {
			t.Fatalf("%s without -run should fail", command)
		}
	}
}
