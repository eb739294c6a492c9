package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estiacrm/marketintel/internal/scheduler"
	"github.com/estiacrm/marketintel/internal/storage"
	"github.com/estiacrm/marketintel/models"
)

// newOrgCmd groups the operator actions on one tenant's config: enable,
// disable, pause, resume and reset.
func newOrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage a tenant's market intelligence config",
	}
	cmd.AddCommand(
		newEnableCmd(),
		newDisableCmd(),
		newPauseCmd(),
		newResumeCmd(),
		newResetCmd(),
		newShowCmd(),
	)
	return cmd
}

func newEnableCmd() *cobra.Command {
	var (
		platforms []string
		frequency string
		maxPages  int
	)
	cmd := &cobra.Command{
		Use:   "enable <organization-id>",
		Short: "Turn the feature on for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], true, func(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
				if len(platforms) > 0 {
					cfg.Platforms = platforms
				}
				if frequency != "" {
					cfg.ScrapeFrequency = models.ScrapeFrequency(frequency)
				}
				if cfg.ScrapeFrequency == "" {
					cfg.ScrapeFrequency = models.FrequencyDaily
				}
				if maxPages > 0 {
					cfg.MaxPagesPerPlatform = maxPages
				}
				if len(cfg.Platforms) == 0 {
					return cfg, errors.New("at least one platform is required, pass --platforms")
				}
				return scheduler.Enable(cfg)
			})
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platforms", nil, "platforms to crawl, e.g. spitogatos,xe")
	cmd.Flags().StringVar(&frequency, "frequency", "", "HOURLY, TWICE_DAILY, DAILY or WEEKLY")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page bound per platform and run")
	return cmd
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <organization-id>",
		Short: "Turn the feature off for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], false, func(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
				return scheduler.Disable(cfg), nil
			})
		},
	}
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <organization-id>",
		Short: "Suspend scraping until resumed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], false, scheduler.Pause)
		},
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <organization-id>",
		Short: "Re-activate a paused tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], false, scheduler.Resume)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <organization-id>",
		Short: "Clear the ERROR state back to pending setup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], false, scheduler.Reset)
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <organization-id>",
		Short: "Print a tenant's current config and schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			cfg, err := d.store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("organization:  %s\n", cfg.OrganizationID)
			fmt.Printf("status:        %s\n", cfg.Status)
			fmt.Printf("platforms:     %v\n", []string(cfg.Platforms))
			fmt.Printf("frequency:     %s\n", cfg.ScrapeFrequency)
			fmt.Printf("failures:      %d\n", cfg.ConsecutiveFailures)
			if cfg.LastScrapeAt != nil {
				fmt.Printf("last scrape:   %s\n", cfg.LastScrapeAt.Format(time.RFC3339))
			}
			if cfg.NextScrapeAt != nil {
				fmt.Printf("next scrape:   %s\n", cfg.NextScrapeAt.Format(time.RFC3339))
			}
			if cfg.LastError != "" {
				fmt.Printf("last error:    %s\n", cfg.LastError)
			}
			return nil
		},
	}
}

// withOrg loads the tenant config, applies the transition and saves the
// result. createMissing lets enable start from a blank config.
func withOrg(ctx context.Context, orgID string, createMissing bool, apply func(models.OrgIntelConfig) (models.OrgIntelConfig, error)) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close(context.Background())

	cfg, err := d.store.Get(ctx, orgID)
	switch {
	case errors.Is(err, storage.ErrNotFound) && createMissing:
		cfg = models.OrgIntelConfig{OrganizationID: orgID}
	case err != nil:
		return err
	}

	updated, err := apply(cfg)
	if err != nil {
		return err
	}
	for _, plat := range updated.Platforms {
		if _, err := d.registry.Get(plat); err != nil {
			return err
		}
	}
	if err := d.store.Save(ctx, updated); err != nil {
		return err
	}
	d.log.Info("organization config updated",
		zap.String("organization_id", orgID),
		zap.String("status", string(updated.Status)))
	return nil
}
