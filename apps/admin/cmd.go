package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/resourcelist"
	"github.com/trezcool/academia/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in: run `academyctl login` first")
)

// public commands run without a session
const publicAnnotation = "public"

type commandLine struct {
	conf       *core.Config
	client     *apiclient.Client
	store      *session.Store
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
	sink       resourcelist.NotificationSink

	in  *bufio.Reader
	out io.Writer
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:] // program name
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) rootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "academyctl",
		Short: "academyctl - Academy admin console",
		Long: `academyctl manages the streams, cohorts, sessions, assignments, students, instructors,
certificates and announcements of the academy through its REST API.

Lists behind cascading filters (ie: sessions of a cohort of a stream) need every filter:
run a list with the filters you know and the options of the next one are printed.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cli.client == nil {
				var opts []apiclient.Option
				if verbose && cli.logger != nil {
					opts = append(opts, apiclient.WithLogger(cli.logger))
				}
				cli.client = apiclient.New(cli.conf.API, cli.store, opts...)
			}
			if isPublic(cmd) || cli.store.Token() != "" {
				return nil
			}
			return errNotLoggedIn
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every API request")

	root.AddCommand(cli.loginCmd(), cli.logoutCmd(), cli.whoamiCmd(), cli.dashboardCmd())

	root.AddCommand(
		newKindCommand(cli, streamsKind),
		newKindCommand(cli, cohortsKind),
		newKindCommand(cli, sessionsKind),
		newKindCommand(cli, assignmentsKind),
		newKindCommand(cli, studentsKind),
		newKindCommand(cli, instructorsKind),
		newKindCommand(cli, announcementsKind),
	)

	certs := newKindCommand(cli, certificatesKind)
	certs.AddCommand(cli.revokeCertificateCmd())

	attendance := newKindCommand(cli, attendanceKind)
	attendance.AddCommand(
		cli.rosterCmd(),
		cli.attendanceSummaryCmd(),
		cli.markAttendanceCmd(),
		cli.setAttendanceCmd(),
		cli.unsetAttendanceCmd(),
		cli.clearAttendanceCmd(),
	)

	grades := newKindCommand(cli, gradesKind)
	grades.AddCommand(cli.gradeBulkCmd(), cli.gradeSubmissionCmd())

	root.AddCommand(certs, attendance, grades)
	return root
}

func isPublic(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete", "academyctl":
		return true
	}
	return cmd.Annotations[publicAnnotation] == "true"
}

// confirm asks a yes/no question; anything but y|yes is a no.
func (cli *commandLine) confirm(question string) bool {
	fmt.Fprintf(cli.out, "%s [y/N] ", question)
	answer, _ := cli.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (cli *commandLine) prompt(label string) string {
	fmt.Fprintf(cli.out, "%s: ", label)
	answer, _ := cli.in.ReadString('\n')
	return strings.TrimSpace(answer)
}

// reported tells errors already surfaced through the notification sink.
func reported(err error) bool {
	var (
		fErr *resourcelist.FetchError
		mErr *resourcelist.MutationError
	)
	return errors.As(err, &fErr) || errors.As(err, &mErr)
}

func (cli *commandLine) validateStruct(s interface{}) error {
	return core.ValidateStruct(cli.validate, cli.translator, s)
}
