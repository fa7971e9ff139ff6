package agent

// Manager agent names. The six managers form a fixed topology; see
// Dependencies for the upstream-output table.
const (
	Drool          = "drool"
	Model          = "model"
	Outbound       = "outbound"
	Transformation = "transformation"
	Inbound        = "inbound"
	Reviewer       = "reviewer"
)

// SequentialManagers run one at a time after the parallel phase, in this
// order. Each depends on the stored output of everything before it.
var SequentialManagers = []string{Outbound, Transformation, Inbound}

// GroupedManagers fan out per workbook group. Drool is excluded: it takes
// the relevance filter's included list in a single invocation.
var GroupedManagers = map[string]bool{
	Model:          true,
	Outbound:       true,
	Transformation: true,
	Inbound:        true,
}

// dependencies maps each manager to the upstream agents whose stored
// outputs it may read.
var dependencies = map[string][]string{
	Drool:          {},
	Model:          {},
	Outbound:       {Drool, Model},
	Transformation: {Drool, Model, Outbound},
	Inbound:        {Drool, Model, Outbound, Transformation},
	Reviewer:       {Drool, Model, Outbound, Transformation, Inbound},
}

// Dependencies returns the upstream agents for a manager. Unknown names
// have no dependencies.
func Dependencies(managerName string) []string {
	return dependencies[managerName]
}

// IsManager reports whether name is one of the six managers.
func IsManager(name string) bool {
	_, ok := dependencies[name]
	return ok
}
