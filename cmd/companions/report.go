package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/companions/internal/augment"
	"github.com/kingrea/companions/internal/marker"
)

var (
	tenantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#06D6A0"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func writeResult(w io.Writer, res augment.Result) {
	header := tenantStyle.Render(res.Tenant)
	if res.Source != "" {
		header += " " + dimStyle.Render(res.Source)
	}
	fmt.Fprintln(w, header)
	if !res.Ran {
		fmt.Fprintln(w, dimStyle.Render("  already augmented"))
	}
	for _, rec := range res.Report.Records {
		line := fmt.Sprintf("  + %s #%d (%s)", rec.Name, rec.ID, rec.Category)
		if rec.Variant == marker.KindCritter {
			line += fmt.Sprintf(" value=%d rarity=%s", rec.Value, rec.Rarity)
		}
		fmt.Fprintln(w, okStyle.Render(line))
	}
	if res.Report.Skipped > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %d companion(s) skipped, see log", res.Report.Skipped)))
	}
	if res.Err != nil {
		for _, line := range strings.Split(res.Err.Error(), "\n") {
			fmt.Fprintln(w, errStyle.Render("  ! "+line))
		}
	}
}
