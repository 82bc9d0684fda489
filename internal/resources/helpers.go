package resources

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/ssot"
)

// scheme prefixes every lorekeep resource URI.
const scheme = "lorekeep://"

// parseDocumentURI splits lorekeep://<project>/<kind> into its parts.
func parseDocumentURI(uri string) (string, ssot.Kind, error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", fmt.Errorf("unsupported resource URI %q", uri)
	}

	projectID, rawKind, found := strings.Cut(rest, "/")
	if !found || projectID == "" || rawKind == "" {
		return "", "", fmt.Errorf("resource URI %q: want lorekeep://<project>/<kind>", uri)
	}

	kind, err := ssot.ParseKind(rawKind)
	if err != nil {
		return "", "", err
	}
	return projectID, kind, nil
}
