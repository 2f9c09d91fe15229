package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/clauderelay/proxypool/theme"
)

var (
	Name        = "proxypoold"
	Authors     = "clauderelay"
	Description = "Local failover proxy pool for the menu-bar client"
	Version     = "v0.1.0"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/clauderelay/proxypool"
	GithubHomeUri   = "https://github.com/clauderelay/proxypool"
	GithubLatestUri = "https://github.com/clauderelay/proxypool/releases/latest"
)

// PrintVersionInfo writes a one-line or extended version banner, following
// the teacher's hyperlinked-splash convention for CLI entrypoints.
func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)

	var b strings.Builder
	b.WriteString(theme.ColourSplash(fmt.Sprintf("%s — %s", Name, Description)))
	b.WriteString("\n")
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString("\n")

	if extendedInfo {
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
