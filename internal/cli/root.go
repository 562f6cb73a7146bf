package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// LessonSource loads the stored lessons and settings of an organization.
type LessonSource interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error)
	Config(ctx context.Context, organizationID string) (models.OrganizationConfig, error)
}

// SourceFactory opens the lesson store on demand; the returned func releases it.
type SourceFactory func(ctx context.Context) (LessonSource, func(), error)

// ErrViolations is returned when an audit finds overlapping lessons.
var ErrViolations = errors.New("schedule violations found")

// NewRootCommand assembles the timetable-audit command tree.
func NewRootCommand(open SourceFactory, logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := &cobra.Command{
		Use:   "timetable-audit",
		Short: "Audit weekly timetables for overlapping lessons",
		Long: `timetable-audit checks that no teacher, group or tracked room is
booked twice at the same time.

Examples:
  timetable-audit audit --org 6f1c...        # audit lessons stored in Postgres
  timetable-audit check --file lessons.json  # audit an import file before loading it`,
		SilenceUsage: true,
	}
	root.AddCommand(newAuditCommand(open, logger))
	root.AddCommand(newCheckCommand(logger))
	return root
}

func printViolations(w io.Writer, checked int, violations []models.ScheduleViolation) {
	if len(violations) == 0 {
		fmt.Fprintf(w, "checked %d planned lessons: no overlaps\n", checked)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tLESSON\tCOLLIDES WITH\tMESSAGE")
	for _, v := range violations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Dimension, v.LessonID, v.CollidingID, v.Message)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "checked %d planned lessons: %d violations\n", checked, len(violations))
}

func countActive(lessons []models.Lesson) int {
	n := 0
	for _, l := range lessons {
		if l.Active() {
			n++
		}
	}
	return n
}
