package experiment

import (
	_ "embed"
)

//go:embed defaults/experiment.yaml
var defaultExperimentYAML []byte
