package model

// Filters holds include/exclude glob patterns for entry names.
// An empty include list matches everything; an empty exclude list
// matches nothing.
type Filters struct {
	Include []string
	Exclude []string
}

// Target describes where one artifact type installs for an agent.
// An empty Path means the agent does not consume that artifact type.
type Target struct {
	Path    string
	Filters Filters
}

// Configured reports whether the target has an install root.
func (t Target) Configured() bool {
	return t.Path != ""
}

// Agent is a named local consumer of artifacts. Agents are resolved
// once per invocation from configuration and are read-only to the
// reconciliation engine.
type Agent struct {
	Name    string
	Enabled bool
	Targets map[ArtifactType]Target
}

// Target returns the install target for the given artifact type and
// whether it is configured.
func (a Agent) Target(t ArtifactType) (Target, bool) {
	target, ok := a.Targets[t]
	if !ok || !target.Configured() {
		return Target{}, false
	}
	return target, true
}
