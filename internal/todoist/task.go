package todoist

import (
	"bytes"
	"encoding/json"
	"strings"
)

// The digest label in both spellings it has been stored under. A task
// matches when it carries either one.
const (
	TargetLabel     = "@Главное на сегодня"
	TargetLabelBare = "Главное на сегодня"
)

// TargetLabels returns the label set a digest task may carry.
func TargetLabels() map[string]struct{} {
	return map[string]struct{}{
		TargetLabel:     {},
		TargetLabelBare: {},
	}
}

// Task is one active Todoist task. Raw keeps the verbatim API object so the
// fields this struct does not model stay reachable; nothing mutates a task
// after decoding.
type Task struct {
	ID        string
	Content   string
	Labels    []string
	ProjectID string
	Order     int

	Raw json.RawMessage
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        flexID   `json:"id"`
		Content   string   `json:"content"`
		Labels    []string `json:"labels"`
		ProjectID flexID   `json:"project_id"`
		Order     int      `json:"order"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	t.ID = string(wire.ID)
	t.Content = wire.Content
	t.Labels = wire.Labels
	t.ProjectID = string(wire.ProjectID)
	t.Order = wire.Order
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Project is one Todoist project, reduced to what name resolution needs.
type Project struct {
	ID   string
	Name string
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID   flexID `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.ID = string(wire.ID)
	p.Name = wire.Name
	return nil
}

// flexID tolerates the string and numeric id spellings the API has shipped
// over time; both normalize to the string form.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// ProjectIndex maps project id to display name. It is built once per run
// and read-only afterwards.
type ProjectIndex map[string]string

// BuildProjectIndex indexes projects by id for name resolution.
func BuildProjectIndex(projects []Project) ProjectIndex {
	index := make(ProjectIndex, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		index[p.ID] = p.Name
	}
	return index
}

// Name resolves a project reference. ok is false when the reference is
// empty or unknown to the index.
func (ix ProjectIndex) Name(projectID string) (string, bool) {
	if projectID == "" {
		return "", false
	}
	name, ok := ix[projectID]
	return name, ok
}

// FilterByLabel keeps tasks carrying at least one of the wanted labels,
// preserving input order.
func FilterByLabel(tasks []Task, wanted map[string]struct{}) []Task {
	if len(wanted) == 0 {
		return nil
	}

	var out []Task
	for _, t := range tasks {
		for _, label := range t.Labels {
			if _, ok := wanted[label]; ok {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
