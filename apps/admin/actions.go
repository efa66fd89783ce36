package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/core/academy"
	"github.com/trezcool/academia/resourcelist"
)

// mutate runs fn through a list of kind k loaded with static filters, then prints the refreshed list.
func mutate[E resourcelist.Entity, D any](ctx context.Context, cli *commandLine, k kind[E, D], static map[string]string, op string, fn func(ctx context.Context) error) error {
	if static == nil {
		static = map[string]string{}
	}
	ctl, err := newController(cli, k, static)
	if err != nil {
		return err
	}
	if err = ctl.Mutate(ctx, op, fn); err != nil {
		return err
	}
	renderState(cli, k, ctl.State())
	return nil
}

func parseIDs(args []string) ([]academy.ID, error) {
	ids := make([]academy.ID, 0, len(args))
	for _, arg := range args {
		id, err := academy.ParseID(arg)
		if err != nil || id <= 0 {
			return nil, errors.Errorf("invalid ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func requiredID(flag, value string) (academy.ID, error) {
	id, err := academy.ParseID(value)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("--%s: invalid ID %q", flag, value)
	}
	return id, nil
}

// certificates

func (cli *commandLine) revokeCertificateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return mutate(cmd.Context(), cli, certificatesKind, nil, "revoke certificate "+args[0], func(ctx context.Context) error {
				return cli.client.RevokeCertificate(ctx, ids[0])
			})
		},
	}
}

// attendance

func sessionFilter(id academy.ID) map[string]string {
	return map[string]string{apiclient.FilterSession: id.String()}
}

func (cli *commandLine) rosterCmd() *cobra.Command {
	var cohort string
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the students enrolled in a cohort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cohortID, err := requiredID("cohort", cohort)
			if err != nil {
				return err
			}
			roster, err := cli.client.CohortRoster(cmd.Context(), cohortID)
			if err != nil {
				return err
			}
			rows := make([]table.Row, 0, len(roster))
			for _, r := range roster {
				rows = append(rows, table.Row{r.UserID, r.Name, r.Email, r.EnrollmentID})
			}
			cli.renderTable(table.Row{"User", "Name", "Email", "Enrollment"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&cohort, "cohort", "", "cohort ID")
	_ = cmd.MarkFlagRequired("cohort")
	return cmd
}

func (cli *commandLine) attendanceSummaryCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count the students present, absent and late at a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessionID, err := requiredID("session", session)
			if err != nil {
				return err
			}
			sheet, err := cli.client.AttendanceSheet(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			s := sheet.Summary
			cli.renderTable(
				table.Row{"Total", "Present", "Absent", "Late", "Unmarked"},
				[]table.Row{{s.Total, s.Present, s.Absent, s.Late, s.Total - s.Present - s.Absent - s.Late}},
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func (cli *commandLine) markAttendanceCmd() *cobra.Command {
	var session, status string
	cmd := &cobra.Command{
		Use:   "mark <user_id>...",
		Short: "Record the attendance of students at a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := requiredID("session", session)
			if err != nil {
				return err
			}
			userIDs, err := parseIDs(args)
			if err != nil {
				return err
			}
			mark := academy.MarkAttendance{SessionID: sessionID}
			for _, id := range userIDs {
				mark.Attendance = append(mark.Attendance, academy.AttendanceEntry{UserID: id, Status: status})
			}
			if err = cli.validateStruct(&mark); err != nil {
				return err
			}
			return mutate(cmd.Context(), cli, attendanceKind, sessionFilter(sessionID), "mark attendance", func(ctx context.Context) error {
				return cli.client.MarkAttendance(ctx, mark)
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID")
	cmd.Flags().StringVar(&status, "status", academy.AttendancePresent, "present, absent or late")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func (cli *commandLine) setAttendanceCmd() *cobra.Command {
	var session, status string
	cmd := &cobra.Command{
		Use:   "set <user_id>",
		Short: "Change the attendance status of one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := requiredID("session", session)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			data := academy.AttendanceStatus{Status: status}
			if err = cli.validateStruct(&data); err != nil {
				return err
			}
			return mutate(cmd.Context(), cli, attendanceKind, sessionFilter(sessionID), "update attendance", func(ctx context.Context) error {
				return cli.client.UpdateAttendance(ctx, sessionID, ids[0], data)
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID")
	cmd.Flags().StringVar(&status, "status", "", "present, absent or late")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (cli *commandLine) unsetAttendanceCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "unset <user_id>",
		Short: "Delete the attendance record of one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := requiredID("session", session)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return mutate(cmd.Context(), cli, attendanceKind, sessionFilter(sessionID), "delete attendance", func(ctx context.Context) error {
				return cli.client.DeleteAttendance(ctx, sessionID, ids[0])
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func (cli *commandLine) clearAttendanceCmd() *cobra.Command {
	var (
		session string
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every attendance record of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessionID, err := requiredID("session", session)
			if err != nil {
				return err
			}
			if !yes && !cli.confirm(fmt.Sprintf("Clear the attendance of session %s?", sessionID)) {
				fmt.Fprintln(cli.out, "aborted")
				return nil
			}
			return mutate(cmd.Context(), cli, attendanceKind, sessionFilter(sessionID), "clear attendance", func(ctx context.Context) error {
				return cli.client.ClearSessionAttendance(ctx, sessionID)
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

// grades

func assignmentFilter(id academy.ID) map[string]string {
	return map[string]string{apiclient.FilterAssignment: id.String()}
}

func (cli *commandLine) gradeBulkCmd() *cobra.Command {
	var assignment, data string
	cmd := &cobra.Command{
		Use:     "bulk",
		Short:   "Grade many submissions of an assignment at once",
		Example: `  academyctl grades bulk --assignment 4 --data '{"grades": [{"user_id": 7, "grade_score": 18}]}'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assignmentID, err := requiredID("assignment", assignment)
			if err != nil {
				return err
			}
			grades, err := decodeDraft[academy.BulkGrade](cli.in, data)
			if err != nil {
				return err
			}
			if err = cli.validateStruct(&grades); err != nil {
				return err
			}
			var graded int
			err = mutate(cmd.Context(), cli, gradesKind, assignmentFilter(assignmentID), "grade submissions", func(ctx context.Context) error {
				n, gErr := cli.client.GradeBulk(ctx, assignmentID, grades)
				graded = n
				return gErr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%d submissions graded\n", graded)
			return nil
		},
	}
	cmd.Flags().StringVar(&assignment, "assignment", "", "assignment ID")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON or YAML grades; @file reads a file, - reads stdin")
	_ = cmd.MarkFlagRequired("assignment")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (cli *commandLine) gradeSubmissionCmd() *cobra.Command {
	var (
		assignment string
		grade      academy.SubmissionGrade
	)
	cmd := &cobra.Command{
		Use:   "set <submission_id>",
		Short: "Grade one submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignmentID, err := requiredID("assignment", assignment)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err = cli.validateStruct(&grade); err != nil {
				return err
			}
			return mutate(cmd.Context(), cli, gradesKind, assignmentFilter(assignmentID), "grade submission "+args[0], func(ctx context.Context) error {
				return cli.client.GradeSubmission(ctx, ids[0], grade)
			})
		},
	}
	cmd.Flags().StringVar(&assignment, "assignment", "", "assignment ID, to list its grades afterwards")
	cmd.Flags().Float64Var(&grade.GradeScore, "score", 0, "score")
	cmd.Flags().StringVar(&grade.GradeFeedback, "feedback", "", "feedback")
	cmd.Flags().StringVar(&grade.Status, "status", academy.GradeGraded, "graded or returned")
	_ = cmd.MarkFlagRequired("assignment")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}
