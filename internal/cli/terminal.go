package cli

import (
	"fmt"
	"strings"

	"github.com/bastiangx/exdict/internal/utils"
	"github.com/bastiangx/exdict/pkg/lookup"
	"github.com/bastiangx/exdict/pkg/resolve"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	keyStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	noticeStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"})
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// renderResult formats a resolution for a terminal. Values are printed as is
// so multi-line SQL keeps its layout.
func renderResult(res resolve.Result) string {
	var b strings.Builder
	if res.Exact {
		b.WriteString(keyStyle.Render(res.UsedKey))
	} else {
		b.WriteString(noticeStyle.Render(
			fmt.Sprintf("no exact entry for '%s', showing '%s'", res.Requested, res.UsedKey)))
	}
	b.WriteByte('\n')
	b.WriteString(res.Value)
	return b.String()
}

func renderStats(stats lookup.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("entries:"), utils.FormatWithCommas(stats.Entries))
	fmt.Fprintf(&b, "%s %d (%d failed)\n", keyStyle.Render("sources:"), stats.Sources, stats.FailedSources)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("replaced:"), utils.FormatWithCommas(stats.Replaced))
	fmt.Fprintf(&b, "%s %d", keyStyle.Render("loads:"), stats.Loads)
	if !stats.LastLoad.IsZero() {
		fmt.Fprintf(&b, ", last at %s in %v", stats.LastLoad.Format("15:04:05"), stats.LastDuration)
	}
	return b.String()
}

func renderReport(r source.Report) string {
	line := fmt.Sprintf("%s [%s, %s] %s registered, %d replaced, %d skipped, %d malformed",
		r.Path, r.Format, r.Encoding, utils.FormatWithCommas(r.Registered), r.Replaced, r.Skipped, r.Malformed)
	if r.EncodingFallback {
		line += noticeStyle.Render(" (encoding fell back to utf-8)")
	}
	if r.Err != nil {
		return warnStyle.Render(fmt.Sprintf("%s: %v", r.Path, r.Err))
	}
	return line
}

func renderKeys(keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%2d. %s", i+1, keyStyle.Render(k))
	}
	return b.String()
}

const helpText = `type a key and press Enter to look it up (Ctrl+C to exit)
  :complete PREFIX   list keys starting with PREFIX
  :stats             show dictionary statistics
  :reload            rebuild the dictionary from the config
  :quit              leave`
