package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	exportsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/export"
)

func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func (cli *commandLine) exportGrades(ctx context.Context, subjectID, out string) error {
	sub, err := cli.subjectSvc.GetByID(ctx, subjectID)
	if err != nil {
		return err
	}
	rows, err := cli.gradeSvc.ForSubject(ctx, sub.ID)
	if err != nil {
		return err
	}

	if out == "" {
		out = exportsvc.GradeSheetFilename(sub.Name)
	}
	err = writeFile(out, func(f *os.File) error {
		return exportsvc.WriteGradeSheet(f, sub.Name, rows)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d grade rows written to %s\n", len(rows), out)
	return nil
}

// report generates a fresh AI report for the subject and writes it as PDF.
func (cli *commandLine) report(ctx context.Context, subjectID, out string) error {
	status, err := cli.reportSvc.Generate(ctx, subjectID)
	if err != nil {
		return err
	}
	filename, content, err := cli.reportSvc.PDF(ctx, subjectID)
	if err != nil {
		return err
	}

	if out == "" {
		out = filename
	}
	err = writeFile(out, func(f *os.File) error {
		_, err := f.Write(content)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, status.Text)
	fmt.Fprintf(cli.out, "\nReport written to %s\n", out)
	return nil
}
