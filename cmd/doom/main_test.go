package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/unixpickle/essentials"

	"github.com/aleskucera/DOOM/render"
)

func TestLoadExperimentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	flagGymHost = "remote:6000"
	flagDBPath = filepath.Join(t.TempDir(), "results.db")
	defer func() {
		flagGymHost = ""
		flagDBPath = ""
	}()

	exp, err := loadExperiment()
	if err != nil {
		t.Fatal(err)
	}
	if exp.GymHost != "remote:6000" || exp.ResultsDB != flagDBPath {
		t.Errorf("overrides not applied: %+v", exp)
	}
}

func TestWindowClosed(t *testing.T) {
	wrapped := essentials.AddCtx("enjoy", fmt.Errorf("show: %w", render.ErrWindowClosed))
	if !windowClosed(wrapped) {
		t.Error("wrapped error should count as closed")
	}
	if !windowClosed(fmt.Errorf("show: %w", render.ErrWindowClosed)) {
		t.Error("error wrapped with %w should count as closed")
	}
	if windowClosed(fmt.Errorf("connection refused")) {
		t.Error("unrelated error should not count as closed")
	}
}
