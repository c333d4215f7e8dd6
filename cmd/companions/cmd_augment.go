package main

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/companions/internal/config"
	"github.com/kingrea/companions/internal/logbook"
	"github.com/kingrea/companions/internal/logging"
	"github.com/kingrea/companions/internal/scan"
	"github.com/kingrea/companions/internal/tui"
	"github.com/kingrea/companions/plugins"
)

var errTenantsFailed = errors.New("one or more tenants reported errors")

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return err
	}
	units, err := plugins.LoadUnitDir(cfg.TenantsDir())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(units) == 0 {
		fmt.Fprintf(out, "No tenants in %s\n", cfg.TenantsDir())
		return nil
	}
	for _, u := range units {
		fmt.Fprintln(out, tenantStyle.Render(u.Name())+" "+dimStyle.Render(u.Source()))
		found := false
		for info := range scan.Marked(u) {
			found = true
			line := fmt.Sprintf("  %s [%s]", info.Name, info.Markers)
			if info.NoAutoload {
				line += warnStyle.Render(" (not autoloaded)")
			}
			fmt.Fprintln(out, line)
		}
		if !found {
			fmt.Fprintln(out, dimStyle.Render("  no marked definitions"))
		}
	}
	return nil
}

func runAugment(cmd *cobra.Command, _ []string) (err error) {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	results, err := s.runtime.LoadDir(s.cfg.TenantsDir())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No tenants in %s\n", s.cfg.TenantsDir())
		return nil
	}
	failed := false
	for _, res := range results {
		writeResult(out, res)
		if res.Err != nil {
			failed = true
		}
		if spawnAll {
			for _, def := range s.runtime.Host().Definitions(res.Tenant) {
				e, spawnErr := s.runtime.Spawn(def.Tenant, def.Name)
				if spawnErr != nil {
					fmt.Fprintln(out, errStyle.Render("  ! "+spawnErr.Error()))
					continue
				}
				fmt.Fprintf(out, "  ~ %s banner=%d banner_item=%d catch=%d\n", def.Name, def.Banner, def.BannerItem, e.CatchItem)
			}
		}
		if showEntries {
			for _, def := range s.runtime.Host().Definitions(res.Tenant) {
				entry, entryErr := s.runtime.Entry(def.Tenant, def.Name)
				if entryErr != nil {
					fmt.Fprintln(out, errStyle.Render("  ! "+entryErr.Error()))
					continue
				}
				fmt.Fprintf(out, "  ? %s %s %d condition(s)\n", def.Name, entry.FlavorKey, len(entry.Conditions))
			}
		}
	}
	if failed {
		return errTenantsFailed
	}
	return nil
}

func runInspect(_ *cobra.Command, _ []string) (err error) {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	if _, err := s.runtime.LoadDir(s.cfg.TenantsDir()); err != nil {
		return err
	}
	book := logbook.New(filepath.Join(s.cfg.LogsDir(), logging.LogFileName))
	p := tea.NewProgram(tui.NewApp(s.runtime, tui.WithLogbook(book)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run inspector: %w", err)
	}
	return nil
}
