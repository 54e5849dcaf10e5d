package main

import (
	"errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database"
)

var (
	migrateFunc = database.RunMigrations // mockable

	errNoDB = errors.New("migrations need a postgres database")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDB
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}
