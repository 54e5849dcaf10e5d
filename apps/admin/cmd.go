package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

var (
	isTerminalFunc = term.IsTerminal     // mockable
	stdin          = io.Reader(os.Stdin) // mockable

	errHelp        = errors.New("help provided")
	errAborted     = errors.New("aborted")
	errNotTerminal = errors.New("stdin is not a terminal: pass -yes to confirm")
)

type commandLine struct {
	db         *sqlx.DB
	studentSvc *student.Service
	subjectSvc *subject.Service
	gradeSvc   *grade.Service
	reportSvc  *report.Service
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run database migrations (up, down, status, version, ...)")
	fmt.Fprintln(cli.out, "  deletestudent -id ID [-yes] - delete a student and their grades")
	fmt.Fprintln(cli.out, "  exportgrades -subject ID -out FILE - write a subject's grade sheet as XLSX")
	fmt.Fprintln(cli.out, "  report -subject ID -out FILE - generate a subject's AI report as PDF")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	deleteStudentCmd := flag.NewFlagSet("deletestudent", flag.ContinueOnError)
	deleteStudentID := deleteStudentCmd.String("id", "", "The student's ID.")
	deleteStudentYes := deleteStudentCmd.Bool("yes", false, "Do not ask for confirmation.")

	exportCmd := flag.NewFlagSet("exportgrades", flag.ContinueOnError)
	exportSubject := exportCmd.String("subject", "", "The subject's ID.")
	exportOut := exportCmd.String("out", "", "The output file. Defaults to the sheet's download name.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportSubject := reportCmd.String("subject", "", "The subject's ID.")
	reportOut := reportCmd.String("out", "", "The output file. Defaults to the report's download name.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "deletestudent":
		if err := deleteStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteStudentID == "" {
			deleteStudentCmd.Usage()
			return errHelp
		}
		return cli.deleteStudent(ctx, *deleteStudentID, *deleteStudentYes)
	case "exportgrades":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportSubject == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportGrades(ctx, *exportSubject, *exportOut)
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportSubject == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(ctx, *reportSubject, *reportOut)
	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a yes/no question on the terminal.
func (cli *commandLine) confirm(question string) (bool, error) {
	if !isTerminalFunc(int(os.Stdin.Fd())) {
		return false, errNotTerminal
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
