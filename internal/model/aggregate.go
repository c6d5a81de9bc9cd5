package model

// AggregateTarget is the format-agnostic representation of an
// `aggregate_target` block: a sourceless target that exists to sequence
// other targets and scripts.
type AggregateTarget struct {
	Name    string
	Targets []string // names of targets built by this aggregate, in order

	BuildScripts []*BuildScript
	Settings     *Settings
	ConfigFiles  map[string]string
	Attributes   map[string]any
}
