package scenario

// BuiltIn returns predefined mission arcs keyed by name.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"grid-sweep": {
			Name:        "Grid Sweep",
			Description: "Methodically cover the whole disaster area before extraction begins.",
			Phases: []Phase{
				{
					Name:        "launch",
					Description: "Swarm departs the hub and fans out.",
					Triggers:    []Trigger{{Event: "coverage_percent", Value: 10, Next: "sweep"}},
				},
				{
					Name:        "sweep",
					Description: "Systematic frontier search of unvisited cells.",
					Triggers:    []Trigger{{Event: "coverage_percent", Value: 80, Next: "extraction"}},
				},
				{
					Name:        "extraction",
					Description: "Remaining known victims are carried to the hubs.",
					Triggers:    []Trigger{{Event: "victims_rescued", Value: 1, Next: "complete"}},
				},
				{
					Name:        "complete",
					Description: "Area swept; swarm holds position for recall.",
				},
			},
		},
		"first-response": {
			Name:        "First Response",
			Description: "Reach the first casualties as fast as possible; coverage is secondary.",
			Phases: []Phase{
				{
					Name:        "launch",
					Description: "Swarm departs the hub and fans out.",
					Triggers:    []Trigger{{Event: "victims_found", Value: 1, Next: "triage"}},
				},
				{
					Name:        "triage",
					Description: "First casualties located; sightings propagate through the swarm.",
					Triggers:    []Trigger{{Event: "victims_rescued", Value: 1, Next: "recovery"}},
				},
				{
					Name:        "recovery",
					Description: "Steady rotation of pickup, delivery and recharge.",
					Triggers:    []Trigger{{Event: "tick", Value: 300, Next: "complete"}},
				},
				{
					Name:        "complete",
					Description: "Operation window closed.",
				},
			},
		},
		"attrition": {
			Name:        "Attrition",
			Description: "Long mission on a wide area where drone losses are expected.",
			Phases: []Phase{
				{
					Name:        "launch",
					Description: "Swarm departs the hub and fans out.",
					Triggers:    []Trigger{{Event: "coverage_percent", Value: 25, Next: "endurance"}},
				},
				{
					Name:        "endurance",
					Description: "Battery management dominates; drones rotate through the hubs.",
					Triggers:    []Trigger{{Event: "drones_lost", Value: 1, Next: "degraded"}},
				},
				{
					Name:        "degraded",
					Description: "Swarm operates below strength; remaining drones compensate.",
					Triggers:    []Trigger{{Event: "victims_rescued", Value: 3, Next: "complete"}},
				},
				{
					Name:        "complete",
					Description: "Mission goals met despite losses.",
				},
			},
		},
	}
}
