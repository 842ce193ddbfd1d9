package catalog

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the raw-schema host the locator functions default to.
const DefaultBaseURL = "https://raw.githubusercontent.com/smart-data-models"

// SchemaURL builds the retrieval locator for a schema from its subject and
// name. Pure function; no catalog lookup involved.
func SchemaURL(baseURL, subject, name string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%s/master/%s/schema.json", strings.TrimRight(baseURL, "/"), subject, name)
}

// ParseSchemaURL is the inverse of SchemaURL.
func ParseSchemaURL(baseURL, url string) (subject, name string, err error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := strings.TrimRight(baseURL, "/") + "/"

	rest, ok := strings.CutPrefix(url, base)
	if !ok {
		return "", "", fmt.Errorf("catalog: locator %q not under %q", url, base)
	}
	rest, ok = strings.CutSuffix(rest, "/schema.json")
	if !ok {
		return "", "", fmt.Errorf("catalog: locator %q missing schema.json suffix", url)
	}
	parts := strings.SplitN(rest, "/master/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("catalog: locator %q missing subject/master/name segments", url)
	}
	return parts[0], parts[1], nil
}
