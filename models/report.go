package models

import "time"

type UploadMode string

const (
	UploadModeSingle  UploadMode = "single"
	UploadModeSession UploadMode = "session"
)

type FileResult struct {
	Path   string     `json:"path"`
	Target string     `json:"target"`
	Size   uint64     `json:"size"`
	Mode   UploadMode `json:"mode"`
	Chunks int        `json:"chunks"`
	Err    error      `json:"-"`
}

type ProjectStatus string

const (
	ProjectStatusOK      ProjectStatus = "ok"
	ProjectStatusPartial ProjectStatus = "partial"
	ProjectStatusFailed  ProjectStatus = "failed"
)

type ProjectReport struct {
	Project      string        `json:"project"`
	Status       ProjectStatus `json:"status"`
	RemoteFolder string        `json:"remote_folder"`
	Artifacts    []Artifact    `json:"artifacts"`
	Uploaded     []string      `json:"uploaded"`
	Errors       []string      `json:"errors,omitempty"`
}

type RunReport struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Projects   []*ProjectReport `json:"projects"`
}
