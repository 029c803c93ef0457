package bundle

import (
	"fmt"
	"strings"
)

// HTMLSnippet returns the <link> tags referencing the bundle files,
// in the order they should appear in the document head.
func HTMLSnippet(files []string) string {
	var sb strings.Builder
	for _, name := range files {
		var size int
		switch {
		case name == IconFile:
			fmt.Fprintf(&sb, "<link rel=\"icon\" href=\"/%s\" sizes=\"any\">\n", name)
		case name == appleIcon:
			fmt.Fprintf(&sb, "<link rel=\"apple-touch-icon\" sizes=\"180x180\" href=\"/%s\">\n", name)
		case scanSize(name, "favicon-%dx", &size):
			fmt.Fprintf(&sb, "<link rel=\"icon\" type=\"image/png\" sizes=\"%dx%d\" href=\"/%s\">\n", size, size, name)
		case name == ManifestFile:
			fmt.Fprintf(&sb, "<link rel=\"manifest\" href=\"/%s\">\n", name)
		}
	}
	return sb.String()
}

func scanSize(name, format string, size *int) bool {
	if !strings.HasSuffix(name, ".png") {
		return false
	}
	n, err := fmt.Sscanf(name, format, size)
	return err == nil && n == 1 && *size > 0
}
