package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunr3d/project-backup/models"
)

var ErrInvalidProjects = errors.New("некорректный реестр проектов")

// DefaultProjects is used when no registry file exists.
var DefaultProjects = []models.Project{
	{Name: "joinda", Dir: "/www/wwwroot/joinda.io", Database: "joinda"},
}

type registry struct {
	Projects []models.Project `yaml:"projects"`
}

// LoadProjects reads the registry at path. A missing file yields DefaultProjects.
func LoadProjects(path string) ([]models.Project, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		out := make([]models.Project, len(DefaultProjects))
		copy(out, DefaultProjects)
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать реестр проектов %s: %w", path, err)
	}

	return ParseProjects(data)
}

func ParseProjects(data []byte) ([]models.Project, error) {
	var reg registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProjects, err)
	}

	if len(reg.Projects) == 0 {
		return nil, fmt.Errorf("%w: список проектов пуст", ErrInvalidProjects)
	}

	seen := make(map[string]struct{}, len(reg.Projects))
	for i, p := range reg.Projects {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: проект #%d без имени", ErrInvalidProjects, i)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("%w: повторяющееся имя проекта %q", ErrInvalidProjects, p.Name)
		}
		seen[p.Name] = struct{}{}

		if p.Database == "" {
			return nil, fmt.Errorf("%w: у проекта %q не указана база данных", ErrInvalidProjects, p.Name)
		}
	}

	return reg.Projects, nil
}
