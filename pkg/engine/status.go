package engine

import (
	"sync"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// NodeStatus is a node's position in the per-run status machine (spec
// §4.7): PENDING -> RUNNING -> {DONE, FAILED, STOP_PIPELINE}. Terminal
// statuses never transition further.
type NodeStatus string

const (
	StatusPending      NodeStatus = "PENDING"
	StatusRunning      NodeStatus = "RUNNING"
	StatusDone         NodeStatus = "DONE"
	StatusFailed       NodeStatus = "FAILED"
	StatusStopPipeline NodeStatus = "STOP_PIPELINE"
)

func terminal(s NodeStatus) bool {
	switch s {
	case StatusDone, StatusFailed, StatusStopPipeline:
		return true
	default:
		return false
	}
}

// nodeState guards one node's status for the duration of a single run.
// transition is the at-most-one-execution guarantee: only the goroutine
// whose transition call succeeds may proceed to execute the node.
type nodeState struct {
	mu     sync.Mutex
	status NodeStatus
}

func newNodeState() *nodeState {
	return &nodeState{status: StatusPending}
}

func (n *nodeState) get() NodeStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

func (n *nodeState) transition(name string, to NodeStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if terminal(n.status) || (to == StatusRunning && n.status != StatusPending) {
		return &werrors.StatusUpdateError{Node: name, From: string(n.status), To: string(to)}
	}
	n.status = to
	return nil
}
