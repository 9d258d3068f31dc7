package sanity

import (
	"fmt"
	"strings"
)

const cdnImageBase = "https://cdn.sanity.io/images"

// ImageURL turns an asset reference such as
// "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg" into its CDN URL. Anything
// that is not an image reference yields "".
func ImageURL(ref, projectID, dataset string) string {
	if !strings.HasPrefix(ref, "image-") {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(ref, "image-"), "-")
	if len(parts) < 3 {
		return ""
	}
	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	assetID := strings.Join(parts[:len(parts)-2], "-")
	if assetID == "" || format == "" || !strings.Contains(dims, "x") {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s", cdnImageBase, projectID, dataset, assetID, dims, format)
}
