package ports

import "time"

// PipelineMetrics receives measurements from the canvas pipeline.
type PipelineMetrics interface {
	ObserveLayout(direction string, nodes int, d time.Duration)
	RecordMergeCollisions(nodes, edges int)
	RecordMigration(fromVersion string, steps int)
	RecordGeneration(operation string, err error, d time.Duration)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveLayout(string, int, time.Duration)      {}
func (NopMetrics) RecordMergeCollisions(int, int)                {}
func (NopMetrics) RecordMigration(string, int)                   {}
func (NopMetrics) RecordGeneration(string, error, time.Duration) {}
