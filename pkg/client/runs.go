package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftline/cloudclient/pkg/errors"
	"github.com/driftline/cloudclient/pkg/result"
)

// Flow run and task run operations. State payloads are opaque mappings;
// what they mean is up to the schema the service serves. As on the wire,
// the state travels as a JSON-encoded string variable.

// FlowRunInfo fetches version and serialized state for a flow run.
func (c *Client) FlowRunInfo(ctx context.Context, flowRunID string) (result.Result, error) {
	query := fmt.Sprintf(`
		query {
			flow_run_by_pk(id: %q) {
				version
				current_state {
					serialized_state
				}
			}
		}`, flowRunID)

	res, err := c.GraphQL(ctx, query, nil)
	if err != nil {
		return result.Result{}, err
	}
	return res.Field("flow_run_by_pk")
}

// SetFlowRunState transitions a flow run to a new state at the given
// version.
func (c *Client) SetFlowRunState(ctx context.Context, flowRunID string, version int, state map[string]interface{}) (result.Result, error) {
	encoded, err := json.Marshal(state)
	if err != nil {
		return result.Result{}, errors.WrapError(err, errors.ErrGraphQL, "failed to encode state")
	}

	mutation := fmt.Sprintf(`
		mutation($state: String!) {
			setFlowRunState(input: {flowRunId: %q, version: %d, state: $state}) {
				flow_run {
					version
				}
			}
		}`, flowRunID, version)

	res, err := c.GraphQL(ctx, mutation, map[string]interface{}{"state": string(encoded)})
	if err != nil {
		return result.Result{}, err
	}
	return res.Fields("setFlowRunState", "flow_run")
}

// TaskRunInfo fetches (or creates) the task run for a task within a flow
// run. A negative mapIndex stands for an unmapped task.
func (c *Client) TaskRunInfo(ctx context.Context, flowRunID, taskID string, mapIndex int) (result.Result, error) {
	index := "null"
	if mapIndex >= 0 {
		index = fmt.Sprintf("%d", mapIndex)
	}

	mutation := fmt.Sprintf(`
		mutation {
			getOrCreateTaskRun(input: {flowRunId: %q, taskId: %q, mapIndex: %s}) {
				task_run {
					id
					version
					current_state {
						serialized_state
					}
				}
			}
		}`, flowRunID, taskID, index)

	res, err := c.GraphQL(ctx, mutation, nil)
	if err != nil {
		return result.Result{}, err
	}
	return res.Fields("getOrCreateTaskRun", "task_run")
}

// SetTaskRunState transitions a task run to a new state at the given
// version.
func (c *Client) SetTaskRunState(ctx context.Context, taskRunID string, version int, state map[string]interface{}) (result.Result, error) {
	encoded, err := json.Marshal(state)
	if err != nil {
		return result.Result{}, errors.WrapError(err, errors.ErrGraphQL, "failed to encode state")
	}

	mutation := fmt.Sprintf(`
		mutation($state: String!) {
			setTaskRunState(input: {taskRunId: %q, version: %d, state: $state}) {
				task_run {
					version
				}
			}
		}`, taskRunID, version)

	res, err := c.GraphQL(ctx, mutation, map[string]interface{}{"state": string(encoded)})
	if err != nil {
		return result.Result{}, err
	}
	return res.Fields("setTaskRunState", "task_run")
}
