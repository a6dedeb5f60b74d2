package config

// TemplateSensorPipeline is the canonical harvester→grouper→enricher→
// cataloger shape (spec §4.10), named "sensor_pipeline" after the
// original template this config format was distilled from. A
// PipelineConfig with Template set to this value and no Connections
// gets the edges below materialized automatically; node names must be
// exactly "harvester", "grouper", "enricher", "cataloger".
const TemplateSensorPipeline = "sensor_pipeline"

// templateConnections returns the standard connection list for a known
// template name, or nil if name isn't recognized.
func templateConnections(name string) []ConnectionConfig {
	switch name {
	case TemplateSensorPipeline:
		return []ConnectionConfig{
			{
				Start: "harvester", End: "grouper",
				InputConfig: map[string]string{
					"items":      "harvester.items",
					"operations": "harvester.operations",
				},
			},
			{
				Start: "harvester", End: "enricher",
				InputConfig: map[string]string{
					"items": "harvester.items",
				},
			},
			{
				Start: "grouper", End: "enricher",
				InputConfig: map[string]string{
					"groups": "grouper.groups",
				},
			},
			{
				Start: "enricher", End: "cataloger",
				InputConfig: map[string]string{
					"service_metadata": "enricher.service_metadata",
					"group_metadata":   "enricher.group_metadata",
				},
			},
		}
	default:
		return nil
	}
}
