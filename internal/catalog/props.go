package catalog

// Property-set analysis: shared vs. unique attribute paths. All functions
// here are pure reads of the loaded catalog snapshot.

// SharedProperties returns the intersection of the attribute sets of every
// schema in a subject. A subject with exactly one schema shares everything
// that schema declares.
func (c *Catalog) SharedProperties(subject string) (PropertySet, error) {
	names, err := c.SchemasOf(subject)
	if err != nil {
		return nil, err
	}

	shared, err := c.AttributesOf(subject, names[0])
	if err != nil {
		return nil, err
	}
	for _, name := range names[1:] {
		attrs, err := c.AttributesOf(subject, name)
		if err != nil {
			return nil, err
		}
		shared = shared.Intersect(attrs)
	}
	return shared, nil
}

// SharedPropertiesByDomain intersects SharedProperties across every subject
// of a domain, omitting the excluded subjects.
func (c *Catalog) SharedPropertiesByDomain(domain string, excludedSubjects []string) (PropertySet, error) {
	subjects, err := c.SubjectsOf(domain)
	if err != nil {
		return nil, err
	}

	excluded := NewPropertySet(excludedSubjects...)
	kept := subjects[:0:0]
	for _, s := range subjects {
		if !excluded.Has(s) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, &EmptyCatalogError{Scope: "domain", Key: domain}
	}

	shared, err := c.SharedProperties(kept[0])
	if err != nil {
		return nil, err
	}
	for _, s := range kept[1:] {
		props, err := c.SharedProperties(s)
		if err != nil {
			return nil, err
		}
		shared = shared.Intersect(props)
	}
	return shared, nil
}

// UniqueProperties returns the attribute paths of one schema that are not
// shared by every schema of its subject. SharedProperties and
// UniqueProperties are disjoint and their union is the full attribute set.
func (c *Catalog) UniqueProperties(subject, name string) (PropertySet, error) {
	attrs, err := c.AttributesOf(subject, name)
	if err != nil {
		return nil, err
	}
	shared, err := c.SharedProperties(subject)
	if err != nil {
		return nil, err
	}
	return attrs.Diff(shared), nil
}
