package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"coingecko-exporter/internal/types"
)

// Filename picks the export file name. A custom name is used as given when
// it already has a dot in it, otherwise the format is appended as the
// extension. Without a custom name the pattern is
// coingecko-<type>-<UTC timestamp>.<format>.
func Filename(custom string, pageType types.PageType, format types.Format, now time.Time) string {
	custom = strings.TrimSpace(custom)
	if custom != "" {
		if strings.Contains(custom, ".") {
			return custom
		}
		return fmt.Sprintf("%s.%s", custom, format)
	}
	return fmt.Sprintf("coingecko-%s-%s.%s", pageType, now.UTC().Format("2006-01-02T15-04-05"), format)
}

// BaseName strips any directory part so a name cannot escape the output
// dir. It returns "" when nothing usable is left.
func BaseName(name string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if base == "/" || base == "." {
		return ""
	}
	return base
}
