package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

const fileOrganization = "file"

// fileLesson is one entry of an import file.
type fileLesson struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Room        string `json:"room"`
	DayOfWeek   string `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
}

func (f fileLesson) toModel(index int) (models.Lesson, error) {
	day, err := models.ParseDayOfWeek(f.DayOfWeek)
	if err != nil {
		return models.Lesson{}, err
	}
	interval, err := models.NewWeeklyIntervalFromClock(day, f.StartTime, f.EndTime)
	if err != nil {
		return models.Lesson{}, err
	}
	status := models.LessonStatus(strings.ToUpper(strings.TrimSpace(f.Status)))
	if status == "" {
		status = models.LessonStatusPlanned
	}
	if !status.Valid() {
		return models.Lesson{}, fmt.Errorf("unknown status %q", f.Status)
	}
	id := f.ID
	if id == "" {
		id = fmt.Sprintf("#%d", index+1)
	}
	return models.Lesson{
		ID:             id,
		OrganizationID: fileOrganization,
		GroupID:        strings.TrimSpace(f.GroupID),
		GroupName:      strings.TrimSpace(f.GroupName),
		CourseID:       strings.TrimSpace(f.CourseID),
		CourseName:     strings.TrimSpace(f.CourseName),
		TeacherID:      strings.TrimSpace(f.TeacherID),
		TeacherName:    strings.TrimSpace(f.TeacherName),
		Room:           strings.TrimSpace(f.Room),
		Interval:       interval,
		Status:         status,
	}, nil
}

func newCheckCommand(logger *zap.Logger) *cobra.Command {
	var (
		path         string
		roomTracking bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit a JSON file of lessons without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--file is required")
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			var entries []fileLesson
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			lessons := make([]models.Lesson, 0, len(entries))
			for i, entry := range entries {
				lesson, err := entry.toModel(i)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i+1, err)
				}
				lessons = append(lessons, lesson)
			}

			cfg := models.OrganizationConfig{OrganizationID: fileOrganization, RoomTrackingEnabled: roomTracking}
			violations := service.AuditLessons(lessons, cfg)
			logger.Info("file check finished",
				zap.String("file", path),
				zap.Int("lessons", len(lessons)),
				zap.Int("violations", len(violations)))
			printViolations(cmd.OutOrStdout(), countActive(lessons), violations)
			if len(violations) > 0 {
				return ErrViolations
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "path to a JSON array of lessons")
	cmd.Flags().BoolVar(&roomTracking, "room-tracking", false, "also check room double bookings")
	return cmd
}
