package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSlipRescan = "loans.slips.rescan"

type SlipRescanPayload struct {
	SessionID string `json:"sessionId"`
	ObjectKey string `json:"objectKey"`
	Filename  string `json:"filename"`
}

func NewSlipRescanTask(payload SlipRescanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSlipRescan, data), nil
}

func ParseSlipRescanPayload(task *asynq.Task) (SlipRescanPayload, error) {
	var payload SlipRescanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SlipRescanPayload{}, err
	}
	return payload, nil
}
