// Package instance defines the EC2 instance model for siesta.
package instance

// State is an EC2 instance lifecycle state name.
type State string

const (
	StatePending      State = "pending"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting-down"
	StateTerminated   State = "terminated"
	StateStopping     State = "stopping"
	StateStopped      State = "stopped"
)

// Enabled is the only tag value that opts an instance in. Anything
// else, including a missing tag, means not selected.
const Enabled = "true"

// Instance represents one EC2 instance as seen during a selection pass.
type Instance struct {
	ID     string            `json:"id"`
	Region string            `json:"region"`
	State  State             `json:"state"`
	Tags   map[string]string `json:"tags"`
}

// TagEnabled reports whether the tag is present with the literal value "true".
func (i Instance) TagEnabled(key string) bool {
	return i.Tags[key] == Enabled
}
