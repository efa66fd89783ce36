package main

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/academia/core/academy"
)

func (cli *commandLine) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in to the academy API. The password is prompted.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{publicAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = cli.prompt("Email")
			}
			fmt.Fprint(cli.out, "Password: ")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return errors.Wrap(err, "reading password")
			}

			creds := academy.Credentials{Email: email, Password: string(pwd)}
			if err = cli.validateStruct(&creds); err != nil {
				return err
			}
			res, err := cli.client.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if err = cli.store.SetToken(res.Token, res.User); err != nil {
				return errors.Wrap(err, "saving credentials")
			}
			fmt.Fprintf(cli.out, "logged in as %s\n", describeUser(res.User))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the stored credentials",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{publicAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			if err := cli.store.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "logged out")
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usr, err := cli.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, describeUser(usr))
			return nil
		},
	}
}

func describeUser(usr academy.User) string {
	return fmt.Sprintf("%s <%s> (%s)", usr.Name, usr.Email, usr.Role)
}
