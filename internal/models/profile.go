package models

import "fmt"

// ProfileEntry binds one checklist key to the domain it represents and the
// source resolver that produces it.
type ProfileEntry struct {
	Key    string `yaml:"key"`
	Domain Domain `yaml:"domain"`
	Source string `yaml:"source"`
}

// ChecklistProfile is an ordered checklist shape. The entry order is the
// serialization and reporting order for the whole run.
type ChecklistProfile struct {
	Name    string         `yaml:"name"`
	Entries []ProfileEntry `yaml:"entries"`
}

// Keys returns the checklist keys in profile order.
func (p ChecklistProfile) Keys() []string {
	keys := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Validate checks that the profile is usable: non-empty, unique keys, and a
// domain and source on every entry.
func (p ChecklistProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if len(p.Entries) == 0 {
		return fmt.Errorf("profile %s has no entries", p.Name)
	}
	seen := make(map[string]bool, len(p.Entries))
	for _, e := range p.Entries {
		if e.Key == "" {
			return fmt.Errorf("profile %s has an entry with no key", p.Name)
		}
		if seen[e.Key] {
			return fmt.Errorf("profile %s has duplicate key: %s", p.Name, e.Key)
		}
		seen[e.Key] = true
		if e.Domain == "" {
			return fmt.Errorf("profile %s entry %s has no domain", p.Name, e.Key)
		}
		if e.Source == "" {
			return fmt.Errorf("profile %s entry %s has no source", p.Name, e.Key)
		}
	}
	return nil
}

// ClassicProfile is the five-key checklist with radiology split into report
// and image availability.
func ClassicProfile() ChecklistProfile {
	return ChecklistProfile{
		Name: "classic",
		Entries: []ProfileEntry{
			{Key: "Clinical_Notes", Domain: DomainClinical, Source: "clinical"},
			{Key: "Pathology_Report", Domain: DomainPathology, Source: "pathology"},
			{Key: "Radiology_Report", Domain: DomainRadiology, Source: "radiology_report"},
			{Key: "Radiology_Images", Domain: DomainRadiology, Source: "radiology_images"},
			{Key: "Genomics_Profile", Domain: DomainGenomics, Source: "genomics"},
		},
	}
}

// MergedProfile folds radiology into a single entry and adds the
// contraindication screen as its own checklist item.
func MergedProfile() ChecklistProfile {
	return ChecklistProfile{
		Name: "merged",
		Entries: []ProfileEntry{
			{Key: "Clinical", Domain: DomainClinical, Source: "clinical"},
			{Key: "Pathology", Domain: DomainPathology, Source: "pathology"},
			{Key: "Radiology", Domain: DomainRadiology, Source: "radiology_report"},
			{Key: "Genomics", Domain: DomainGenomics, Source: "genomics"},
			{Key: "Contraindications", Domain: DomainContraindications, Source: "contraindications"},
		},
	}
}

// BuiltinProfiles returns the profiles compiled into the binary, keyed by name.
func BuiltinProfiles() map[string]ChecklistProfile {
	return map[string]ChecklistProfile{
		"classic": ClassicProfile(),
		"merged":  MergedProfile(),
	}
}
