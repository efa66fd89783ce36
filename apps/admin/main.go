// Command academyctl is the academy admin console: every list, filter and mutation
// of the admin web pages, from the terminal.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
	logsvc "github.com/trezcool/academia/services/logger"
	notifysvc "github.com/trezcool/academia/services/notify"
	"github.com/trezcool/academia/session"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	store := session.NewStore(conf.CredentialsFile, logger)
	if err := store.Init(); err != nil {
		logger.Fatal(fmt.Sprintf("loading credentials: %v", err), err)
	}

	validate, translator := academy.NewValidator()
	cli := commandLine{
		conf:       conf,
		store:      store,
		validate:   validate,
		translator: translator,
		logger:     logger,
		sink:       notifysvc.NewTerminalSink(os.Stderr, term.IsTerminal(int(os.Stderr.Fd()))),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp && !reported(err) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		if apiclient.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "session expired: run `academyctl login` again")
		}
		os.Exit(1)
	}
}
