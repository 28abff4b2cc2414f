package train

import "github.com/charmbracelet/log"

// A Logger reports training progress.
type Logger interface {
	LogBatch(stats *BatchStats)
	LogEval(eval *Evaluation)
}

// StandardLogger is a Logger which uses a charm logger.
//
// A Field of name <N> controls whether or not the Log<N>
// method does anything.
type StandardLogger struct {
	// Logger is used for output.
	// If nil, the default logger is used.
	Logger *log.Logger

	Batch bool
	Eval  bool
}

// LogBatch logs the statistics of a batch.
func (s *StandardLogger) LogBatch(stats *BatchStats) {
	if s.Batch {
		s.logger().Info("batch", "batch", stats.Batch, "steps", stats.TotalSteps,
			"episodes", stats.Episodes, "mean", stats.MeanReward,
			"stddev", stats.StdReward)
	}
}

// LogEval logs the result of an evaluation.
func (s *StandardLogger) LogEval(eval *Evaluation) {
	if s.Eval {
		s.logger().Info("eval", "steps", eval.Steps, "episodes", eval.Episodes,
			"mean", eval.MeanReward, "stddev", eval.StdReward, "best", eval.Best)
	}
}

func (s *StandardLogger) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}
