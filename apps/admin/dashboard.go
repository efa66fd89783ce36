package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/academia/core/academy"
)

const dashboardAnnouncements = 5

type dashboard struct {
	streams, cohorts, students, instructors, certificates int
	announcements                                         []academy.Announcement
}

func (cli *commandLine) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show academy totals and the latest announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := cli.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			cli.renderTable(table.Row{"", "Total"}, []table.Row{
				{"Streams", d.streams},
				{"Cohorts", d.cohorts},
				{"Students", d.students},
				{"Instructors", d.instructors},
				{"Certificates", d.certificates},
			})

			fmt.Fprintln(cli.out, "Latest announcements:")
			if len(d.announcements) > dashboardAnnouncements {
				d.announcements = d.announcements[:dashboardAnnouncements]
			}
			cli.renderTable(announcementsKind.header, rows(d.announcements, announcementsKind.row))
			return nil
		},
	}
}

// loadDashboard fetches every total concurrently. The first failure cancels the others.
func (cli *commandLine) loadDashboard(ctx context.Context) (dashboard, error) {
	var d dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		streams, err := cli.client.Streams().List(ctx, nil)
		d.streams = len(streams)
		return err
	})
	g.Go(func() error {
		cohorts, err := cli.client.Cohorts().List(ctx, nil)
		d.cohorts = len(cohorts)
		return err
	})
	g.Go(func() error {
		students, err := cli.client.Students().List(ctx, nil)
		d.students = len(students)
		return err
	})
	g.Go(func() error {
		instructors, err := cli.client.Instructors().List(ctx, nil)
		d.instructors = len(instructors)
		return err
	})
	g.Go(func() error {
		certs, err := cli.client.Certificates().List(ctx, nil)
		d.certificates = len(certs)
		return err
	})
	g.Go(func() error {
		var err error
		d.announcements, err = cli.client.Announcements().List(ctx, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		return d, errors.Wrap(err, "loading dashboard")
	}
	return d, nil
}
