package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DeploymentState is the controller's position in the deployment lifecycle.
type DeploymentState int

const (
	StateIdle DeploymentState = iota
	StateStarting
	StateRunning
)

func (s DeploymentState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// DeploymentSession tracks the single active deployment of a client.
type DeploymentSession struct {
	ActiveCommandID string
	State           DeploymentState
	GitURL          string
	Branch          string
	StartedAt       time.Time
}

// Active reports whether a command id is currently recorded.
func (s DeploymentSession) Active() bool {
	return s.ActiveCommandID != ""
}

// RepoRecord is a previously deployed repository.
type RepoRecord struct {
	Name string `json:"name" yaml:"name"`
}

// UnmarshalJSON accepts both "name" and {"name": "..."}.
func (r *RepoRecord) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid repo record: %w", err)
	}
	r.Name = obj.Name
	return nil
}
