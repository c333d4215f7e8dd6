package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// View renders the inspector.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	leftWidth := max(24, width/3)
	rightWidth := max(30, width-leftWidth-6)

	left := boxStyle.Width(leftWidth).Render(a.tenants.View())
	right := boxStyle.Width(rightWidth).Render(a.renderTenant(rightWidth - 2))
	board := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{headerStyle.Render("⬡ COMPANIONS"), board, a.renderFooter()}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderTenant(width int) string {
	tenant := a.selectedTenant()
	if tenant == "" {
		return mutedStyle.Render("No tenants loaded. Add manifests to the tenants directory.")
	}
	var lines []string
	lines = append(lines, titleStyle.Render("Definitions · "+tenant))
	defs := a.definitions()
	if len(defs) == 0 {
		lines = append(lines, mutedStyle.Render("  (none)"))
	}
	for idx, def := range defs {
		line := a.renderDefinition(def)
		if a.focus == focusDefinitions && idx == a.selection {
			line = selectedStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", titleStyle.Render("Companions"))
	records := a.runtime.Host().Records(tenant)
	if len(records) == 0 {
		lines = append(lines, mutedStyle.Render("  (none)"))
	}
	for _, rec := range records {
		lines = append(lines, "  "+renderRecord(rec))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderDefinition(def *content.Definition) string {
	parts := []string{fmt.Sprintf("%s #%d", def.Name, def.Type)}
	if len(def.Markers) > 0 {
		parts = append(parts, "["+def.Markers.String()+"]")
	}
	if def.Banner.Valid() {
		parts = append(parts, fmt.Sprintf("banner=%d item=%d", def.Banner, def.BannerItem))
	}
	if e, ok := a.spawned[def.FullName()]; ok && e.CatchItem.Valid() {
		parts = append(parts, fmt.Sprintf("catch=%d", e.CatchItem))
	}
	return strings.Join(parts, " ")
}

func renderRecord(rec content.Record) string {
	line := fmt.Sprintf("%s #%d (%s)", rec.Name, rec.ID, rec.Category)
	switch {
	case rec.Variant == marker.KindCritter:
		line += fmt.Sprintf(" value=%d rarity=%s", rec.Value, rec.Rarity)
	case rec.Place.Valid():
		line += fmt.Sprintf(" places #%d", rec.Place)
	}
	return line
}

func (a *App) renderFooter() string {
	manager := a.runtime.Manager()
	state := "removed"
	if manager.Installed() {
		state = fmt.Sprintf("installed (%d holders)", manager.Refs())
	}
	status := fmt.Sprintf("finalize redirection: %s", state)
	if a.statusMsg != "" {
		status += " · " + a.statusMsg
	}
	lines := []string{mutedStyle.Render(status)}
	if a.err != nil {
		lines = append(lines, errorStyle.Render("error: "+a.err.Error()))
	}
	lines = append(lines, mutedStyle.Render("tab/→ definitions · s finalize · u unload · r refresh · q quit"))
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries, _ := a.logbook.Tail(8)
	if len(entries) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.String()
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}
