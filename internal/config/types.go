// Package config loads a declarative pipeline definition from YAML
// (spec §4.10): component instantiation by class path and constructor
// parameters, a connection list wiring component outputs to component
// inputs, environment/config-key parameter substitution, and a template
// shortcut for the canonical harvester→grouper→enricher→cataloger
// shape.
package config

// ComponentConfig names one pipeline node: a registered class path and
// the constructor parameters to build it with. Parameter values may be
// plain YAML scalars, "${ENV_VAR}" strings, or {resolver_, key_} maps
// (see resolve.go); both forms are resolved before the component is
// built.
type ComponentConfig struct {
	Name      string         `yaml:"name"`
	ClassPath string         `yaml:"class_path"`
	Params    map[string]any `yaml:"params"`
}

// ConnectionConfig wires one node's output fields into another node's
// input parameters (spec §4.10's connection list). InputConfig maps a
// target parameter name to a source ref string, "<name>" or
// "<name>.<field>" (pkg/pipeline.ParseSourceRef).
type ConnectionConfig struct {
	Start       string            `yaml:"start"`
	End         string            `yaml:"end"`
	InputConfig map[string]string `yaml:"input_config"`
}

// ScheduleConfig selects and configures exactly one trigger kind for a
// pipeline (spec §4.9); which of Interval/Cron is populated is decided
// by which sub-block is present in YAML.
type ScheduleConfig struct {
	Interval *IntervalConfig `yaml:"interval"`
	Cron     *CronConfig     `yaml:"cron"`
}

// IntervalConfig mirrors scheduler.IntervalSpec in YAML form.
type IntervalConfig struct {
	Weeks    int    `yaml:"weeks"`
	Days     int    `yaml:"days"`
	Hours    int    `yaml:"hours"`
	Minutes  int    `yaml:"minutes"`
	Seconds  int    `yaml:"seconds"`
	Duration string `yaml:"duration"`
}

// CronConfig mirrors scheduler.CronSpec in YAML form.
type CronConfig struct {
	Expr   string             `yaml:"expr"`
	Fields *CronFieldsConfig  `yaml:"fields"`
}

// CronFieldsConfig mirrors scheduler.CronFields in YAML form.
type CronFieldsConfig struct {
	Year      string `yaml:"year"`
	Month     string `yaml:"month"`
	Day       string `yaml:"day"`
	Week      string `yaml:"week"`
	DayOfWeek string `yaml:"day_of_week"`
	Hour      string `yaml:"hour"`
	Minute    string `yaml:"minute"`
	Second    string `yaml:"second"`
}

// PipelineConfig is the top-level shape of a pipeline definition file
// (spec §4.10). Connections may be omitted entirely when Template names
// a known template, in which case the template's standard edges are
// materialized instead (template.go).
type PipelineConfig struct {
	Name        string             `yaml:"name"`
	Template    string             `yaml:"template,omitempty"`
	Components  []ComponentConfig  `yaml:"components"`
	Connections []ConnectionConfig `yaml:"connections,omitempty"`
	Schedule    *ScheduleConfig    `yaml:"schedule,omitempty"`
	Store       *StoreConfig       `yaml:"store,omitempty"`

	// Config holds the document's "config" block after substitution.
	// {resolver_, key_} references are evaluated against the whole
	// env-resolved document, so their paths start at the top level
	// (e.g. "config.a.b") (resolve.go).
	Config map[string]any `yaml:"config,omitempty"`
}

// StoreConfig selects the Result Store backend (spec §4.1).
type StoreConfig struct {
	Kind string `yaml:"kind"` // "memory", "filesystem", or "sqlite"
	Path string `yaml:"path"`
}
