// Package catalog loads the schema-definition index and answers the
// catalog queries the pair generator needs: which schemas exist, which
// subject/domain they belong to, and which attribute paths each one
// declares. The loaded catalog is immutable and safe for concurrent reads
// by any number of workers.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// SchemaRef identifies one schema definition.
type SchemaRef struct {
	Domain  string
	Subject string
	Name    string
}

// EmptyCatalogError reports a subject or domain with no usable schemas,
// or a negative-sampling request that cannot be satisfied (a subject with
// a single schema cannot yield a distinct negative name). It is terminal
// for the worker that hits it; retrying cannot make schemas appear.
type EmptyCatalogError struct {
	Scope string // "subject" | "domain" | "negative"
	Key   string
}

func (e *EmptyCatalogError) Error() string {
	return fmt.Sprintf("catalog: no usable schemas for %s %q", e.Scope, e.Key)
}

// indexEntry is one element of the JSON catalog index: a subject
// repository with its domain memberships and schema definitions.
type indexEntry struct {
	RepoName   string       `json:"repoName"`
	Domains    []string     `json:"domains"`
	DataModels []indexModel `json:"dataModels"`
}

type indexModel struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

type subjectEntry struct {
	domains []string
	names   []string // sorted schema names
	attrs   map[string]PropertySet
}

// Catalog is the immutable in-memory catalog snapshot, loaded once at
// process start and shared read-only by every worker.
type Catalog struct {
	subjects map[string]*subjectEntry
	domains  map[string][]string // domain -> sorted subjects
}

// Load reads a catalog index file. See LoadReader for the format.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open index: %w", err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader stream-decodes a JSON array of index entries without
// materializing the whole document. The expected shape is:
//
//	[
//	  {"repoName": "dataModel.Device",
//	   "domains": ["Smart Cities"],
//	   "dataModels": [{"name": "Device", "attributes": ["id", "type", ...]}]},
//	  ...
//	]
//
// Entries with an empty repoName or no data models are skipped. Duplicate
// repoName entries merge their models; the last attribute list for a given
// (subject, name) wins.
func LoadReader(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("catalog: read first token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("catalog: expected array root, got %v", tok)
	}

	c := &Catalog{
		subjects: map[string]*subjectEntry{},
		domains:  map[string][]string{},
	}

	for dec.More() {
		var e indexEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("catalog: decode entry: %w", err)
		}
		c.add(e)
	}
	if end, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("catalog: read array end: %w", err)
	} else if end != json.Delim(']') {
		return nil, fmt.Errorf("catalog: expected array end ']', got %v", end)
	}

	c.buildDomains()
	return c, nil
}

func (c *Catalog) add(e indexEntry) {
	if e.RepoName == "" || len(e.DataModels) == 0 {
		return
	}
	se := c.subjects[e.RepoName]
	if se == nil {
		se = &subjectEntry{attrs: map[string]PropertySet{}}
		c.subjects[e.RepoName] = se
	}
	for _, d := range e.Domains {
		if d != "" && !contains(se.domains, d) {
			se.domains = append(se.domains, d)
		}
	}
	for _, m := range e.DataModels {
		if m.Name == "" {
			continue
		}
		if _, exists := se.attrs[m.Name]; !exists {
			se.names = append(se.names, m.Name)
		}
		se.attrs[m.Name] = NewPropertySet(m.Attributes...)
	}
	sort.Strings(se.names)
}

func (c *Catalog) buildDomains() {
	for subject, se := range c.subjects {
		for _, d := range se.domains {
			c.domains[d] = append(c.domains[d], subject)
		}
	}
	for d := range c.domains {
		sort.Strings(c.domains[d])
	}
}

// ListSchemas returns every known schema reference, ordered by subject then
// name. A schema belonging to several domains appears once per domain.
func (c *Catalog) ListSchemas() []SchemaRef {
	subjects := make([]string, 0, len(c.subjects))
	for s := range c.subjects {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var out []SchemaRef
	for _, subject := range subjects {
		se := c.subjects[subject]
		domains := se.domains
		if len(domains) == 0 {
			domains = []string{""}
		}
		for _, name := range se.names {
			for _, d := range domains {
				out = append(out, SchemaRef{Domain: d, Subject: subject, Name: name})
			}
		}
	}
	return out
}

// SchemasOf returns the sorted schema names of a subject.
func (c *Catalog) SchemasOf(subject string) ([]string, error) {
	se := c.subjects[subject]
	if se == nil || len(se.names) == 0 {
		return nil, &EmptyCatalogError{Scope: "subject", Key: subject}
	}
	return append([]string(nil), se.names...), nil
}

// AttributesOf returns the attribute-path set of one schema.
func (c *Catalog) AttributesOf(subject, name string) (PropertySet, error) {
	se := c.subjects[subject]
	if se == nil {
		return nil, &EmptyCatalogError{Scope: "subject", Key: subject}
	}
	attrs, ok := se.attrs[name]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown schema %s/%s", subject, name)
	}
	return attrs.Clone(), nil
}

// DomainsOf returns the sorted list of known domains.
func (c *Catalog) DomainsOf() []string {
	out := make([]string, 0, len(c.domains))
	for d := range c.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// SubjectsOf returns the sorted subjects of a domain.
func (c *Catalog) SubjectsOf(domain string) ([]string, error) {
	subjects := c.domains[domain]
	if len(subjects) == 0 {
		return nil, &EmptyCatalogError{Scope: "domain", Key: domain}
	}
	return append([]string(nil), subjects...), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
