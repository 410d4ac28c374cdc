package models

type Project struct {
	Name     string `yaml:"name" json:"name"`
	Dir      string `yaml:"dir" json:"dir"`
	Database string `yaml:"db" json:"db"`
}

type ArtifactKind string

const (
	ArtifactKindArchive ArtifactKind = "archive"
	ArtifactKindDump    ArtifactKind = "dump"
)

type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}
