package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db           *sqlx.DB
	schoolSvc    *school.Service
	gradebookSvc *gradebook.Service
	out          io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command: up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix")
	fmt.Fprintln(cli.out, "  seed [-students N] [-seed N] - create a demo teacher with one graded class per assessment template")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedStudents := seedCmd.Int("students", 12, "The number of students enrolled in each class.")
	seedRandom := seedCmd.Int64("seed", 1, "The seed of the generated scores.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedStudents < 1 {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedStudents, *seedRandom)
	default:
		cli.printUsage()
		return errHelp
	}
}
