package domain

// WorkflowNode is one ordered approval step, bound to the role whose
// holders may decide it.
type WorkflowNode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ApproverRole string `json:"approver_role"`
	Position     int    `json:"position"`
}

// Workflow is the ordered approval step sequence. An empty workflow means
// bookings need no approval and are admitted directly as APPROVED.
type Workflow struct {
	nodes []WorkflowNode
}

func NewWorkflow(nodes []WorkflowNode) Workflow {
	return Workflow{nodes: nodes}
}

func (w Workflow) Len() int {
	return len(w.nodes)
}

func (w Workflow) StepAt(index int) (WorkflowNode, error) {
	if index < 0 || index >= len(w.nodes) {
		return WorkflowNode{}, ErrInvalidState
	}
	return w.nodes[index], nil
}

func (w Workflow) ApproverRoleAt(index int) (string, error) {
	node, err := w.StepAt(index)
	if err != nil {
		return "", err
	}
	return node.ApproverRole, nil
}

// Nodes returns a copy of the step sequence, for snapshotting onto a booking.
func (w Workflow) Nodes() []WorkflowNode {
	out := make([]WorkflowNode, len(w.nodes))
	copy(out, w.nodes)
	return out
}

// Actor is the authenticated caller of an approval-gated operation.
type Actor struct {
	ID    string
	Name  string
	Roles []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
