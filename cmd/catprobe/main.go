// Command catprobe inspects a catalog index file and reports what a
// generation run would see: domains, subjects, schema names, and the
// shared/unique property split per schema.
//
// This command is intended for sizing runs before launching them: the unique
// property count per schema bounds the useful noise depth, and subjects with
// a single schema cannot yield negatives without cross-subject sampling.
//
// Output modes
//
//   - Default mode: one line per schema with property counts.
//   - JSON mode (-json): emits the same report as a JSON array for scripting.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"pairgen/internal/catalog"
)

type schemaReport struct {
	Domain     string `json:"domain"`
	Subject    string `json:"subject"`
	Name       string `json:"name"`
	Properties int    `json:"properties"`
	Shared     int    `json:"shared"`
	Unique     int    `json:"unique"`

	// NegativeOK reports whether the subject has at least one other schema
	// to draw a same-subject negative from.
	NegativeOK bool `json:"negativeOk"`
}

func main() {
	var (
		flagCatalog = flag.String("catalog", "catalog.json", "catalog index JSON path")
		flagSubject = flag.String("subject", "", "restrict the report to one subject")
		flagJSON    = flag.Bool("json", false, "emit the report as JSON")
	)
	flag.Parse()

	cat, err := catalog.Load(*flagCatalog)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var reports []schemaReport
	for _, ref := range cat.ListSchemas() {
		if *flagSubject != "" && ref.Subject != *flagSubject {
			continue
		}

		attrs, err := cat.AttributesOf(ref.Subject, ref.Name)
		if err != nil {
			log.Fatalf("%v", err)
		}
		shared, err := cat.SharedProperties(ref.Subject)
		if err != nil {
			log.Fatalf("%v", err)
		}
		unique, err := cat.UniqueProperties(ref.Subject, ref.Name)
		if err != nil {
			log.Fatalf("%v", err)
		}
		names, err := cat.SchemasOf(ref.Subject)
		if err != nil {
			log.Fatalf("%v", err)
		}

		reports = append(reports, schemaReport{
			Domain:     ref.Domain,
			Subject:    ref.Subject,
			Name:       ref.Name,
			Properties: len(attrs),
			Shared:     len(shared),
			Unique:     len(unique),
			NegativeOK: len(names) > 1,
		})
	}

	if len(reports) == 0 {
		fmt.Fprintln(os.Stderr, "no schemas matched")
		os.Exit(1)
	}

	if *flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			log.Fatalf("encode report: %v", err)
		}
		return
	}

	for _, r := range reports {
		negative := "negative=ok"
		if !r.NegativeOK {
			negative = "negative=UNAVAILABLE"
		}
		fmt.Printf("domain=%q subject=%s name=%s properties=%d shared=%d unique=%d %s\n",
			r.Domain, r.Subject, r.Name, r.Properties, r.Shared, r.Unique, negative)
	}
}
