package catalog

import (
	"net/url"
	"strings"

	"github.com/kbukum/pipegen/errors"
)

const (
	// DiscoveryPath is appended to the normalized base to list pipelines.
	DiscoveryPath = "/v1/pipelines/params"

	docSuffix = "doc/index.html"
)

// NormalizeBaseURL validates a user-supplied root URL and strips a trailing
// Swagger UI suffix and trailing slashes. It is idempotent.
func NormalizeBaseURL(root string) (string, error) {
	root = strings.TrimSpace(root)
	u, err := url.Parse(root)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.InvalidURL(root)
	}

	base := strings.TrimRight(root, "/")
	for strings.HasSuffix(base, docSuffix) {
		base = strings.TrimRight(strings.TrimSuffix(base, docSuffix), "/")
	}
	if u, err := url.Parse(base); err != nil || u.Host == "" {
		return "", errors.InvalidURL(root)
	}
	return base, nil
}

// DiscoveryURL returns the catalog endpoint for a normalized base.
func DiscoveryURL(base string) string {
	return base + DiscoveryPath
}

// APIBase returns the prefix generated calls append "v1/<name>/value" to.
func APIBase(base string) string {
	return strings.TrimRight(base, "/") + "/"
}
