// Package catalog loads the fabric and section descriptors used to seed the
// shared document at startup.
package catalog

import (
	"fmt"
	"os"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"gopkg.in/yaml.v3"
)

// Catalog is the descriptor set handed to the store's Initialize.
type Catalog struct {
	Fabrics  []domain.FabricDescriptor  `yaml:"fabrics" json:"fabrics"`
	Sections []domain.SectionDescriptor `yaml:"sections" json:"sections"`
}

// Default returns the built-in catalogue: the six deployment fabrics and no sections.
func Default() *Catalog {
	return &Catalog{
		Fabrics: []domain.FabricDescriptor{
			{ID: "north-it", Name: "North IT Fabric", Site: "North", Type: "IT", Description: "IT infrastructure fabric at North data center"},
			{ID: "north-ot", Name: "North OT Fabric", Site: "North", Type: "OT", Description: "Operational Technology fabric at North data center"},
			{ID: "south-it", Name: "South IT Fabric", Site: "South", Type: "IT", Description: "IT infrastructure fabric at South data center"},
			{ID: "south-ot", Name: "South OT Fabric", Site: "South", Type: "OT", Description: "Operational Technology fabric at South data center"},
			{ID: "tertiary-it", Name: "Tertiary IT Fabric", Site: "Tertiary", Type: "IT", Description: "IT infrastructure fabric at Tertiary data center (NDO host)"},
			{ID: "tertiary-ot", Name: "Tertiary OT Fabric", Site: "Tertiary", Type: "OT", Description: "Operational Technology fabric at Tertiary data center (NDO managed)"},
		},
	}
}

// Load reads a YAML catalogue from path. An empty path yields Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalogue.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return &c, nil
}

// Report summarises a catalogue the way Initialize will see it.
type Report struct {
	Fabrics  int
	Sections int
	Tasks    int
	// Skipped lists descriptors Initialize will ignore, one line each.
	Skipped []string
}

// Check counts usable descriptors and lists the malformed ones.
func (c *Catalog) Check() Report {
	r := Report{Sections: len(c.Sections), Tasks: len(domain.TaskIDs(c.Sections))}

	seen := make(map[string]bool, len(c.Fabrics))
	for i, f := range c.Fabrics {
		switch {
		case f.ID == "":
			r.Skipped = append(r.Skipped, fmt.Sprintf("fabrics[%d]: missing id", i))
		case seen[f.ID]:
			r.Skipped = append(r.Skipped, fmt.Sprintf("fabrics[%d]: duplicate id %q", i, f.ID))
		default:
			seen[f.ID] = true
			r.Fabrics++
		}
	}

	for si, s := range c.Sections {
		for ui, sub := range s.Subsections {
			for ti, task := range sub.Tasks {
				if task.ID == "" {
					r.Skipped = append(r.Skipped, fmt.Sprintf("sections[%d].subsections[%d].tasks[%d]: missing id", si, ui, ti))
				}
			}
		}
	}
	return r
}
