package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/smartgrades/fs"
	"github.com/trezcool/smartgrades/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	engine := cli.db.DriverName()
	if err := database.SetDialect(engine); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, appfs.FS, database.MigrationsDir(engine), arguments...)
}
