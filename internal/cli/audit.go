package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newAuditCommand(open SourceFactory, logger *zap.Logger) *cobra.Command {
	var organizationID string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the stored lessons of one organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(organizationID) == "" {
				return errors.New("--org is required")
			}
			ctx := cmd.Context()
			source, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			cfg, err := source.Config(ctx, organizationID)
			if err != nil {
				return err
			}
			cfg.OrganizationID = organizationID
			lessons, err := source.ListByOrganization(ctx, organizationID)
			if err != nil {
				return err
			}

			violations := service.AuditLessons(lessons, cfg)
			logger.Info("audit finished",
				zap.String("organization_id", organizationID),
				zap.Int("lessons", len(lessons)),
				zap.Int("violations", len(violations)))
			printViolations(cmd.OutOrStdout(), countActive(lessons), violations)
			if len(violations) > 0 {
				return ErrViolations
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&organizationID, "org", "", "organization id to audit")
	return cmd
}
