package domain

// FabricDescriptor describes a fabric known to the client's catalogue.
// Only ID is interpreted; entries without an ID are skipped.
type FabricDescriptor struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Site        string `json:"site,omitempty" yaml:"site,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SectionDescriptor is the top of the section → subsection → task tree.
type SectionDescriptor struct {
	ID          string                 `json:"id" yaml:"id"`
	Title       string                 `json:"title,omitempty" yaml:"title,omitempty"`
	Subsections []SubsectionDescriptor `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}

// SubsectionDescriptor groups tasks under a section.
type SubsectionDescriptor struct {
	Title string           `json:"title,omitempty" yaml:"title,omitempty"`
	Tasks []TaskDescriptor `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// TaskDescriptor is a checklist item. Only ID is interpreted.
type TaskDescriptor struct {
	ID             string `json:"id" yaml:"id"`
	Text           string `json:"text,omitempty" yaml:"text,omitempty"`
	FabricSpecific bool   `json:"fabricSpecific,omitempty" yaml:"fabricSpecific,omitempty"`
	NDOCentralized bool   `json:"ndoCentralized,omitempty" yaml:"ndoCentralized,omitempty"`
}

// TaskIDs walks the section tree and returns every task id in order,
// skipping tasks without an id and duplicates.
func TaskIDs(sections []SectionDescriptor) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, section := range sections {
		for _, sub := range section.Subsections {
			for _, task := range sub.Tasks {
				if task.ID == "" {
					continue
				}
				if _, dup := seen[task.ID]; dup {
					continue
				}
				seen[task.ID] = struct{}{}
				ids = append(ids, task.ID)
			}
		}
	}
	return ids
}
