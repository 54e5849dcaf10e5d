package main

import (
	"context"
	"fmt"
)

// deleteStudent deletes a student after confirmation. Their grades go with them.
func (cli *commandLine) deleteStudent(ctx context.Context, id string, yes bool) error {
	std, err := cli.studentSvc.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s (%s)\n", std.FullName(), std.StudentNumber)
	if !yes {
		ok, err := cli.confirm("Delete this student?")
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	if err := cli.studentSvc.Delete(ctx, std.ID); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Student deleted.")
	return nil
}
