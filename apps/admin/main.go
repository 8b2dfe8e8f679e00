package main

import (
	"log"
	"os"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
	logsvc "github.com/trezcool/smartgrades/services/logger"
	"github.com/trezcool/smartgrades/storage/database"
	sqlxrepos "github.com/trezcool/smartgrades/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	cli := commandLine{
		db:           db,
		schoolSvc:    school.NewService(schoolRepo),
		gradebookSvc: gradebook.NewService(schoolRepo, sqlxrepos.NewGradebookRepository(db), logger, nil),
		out:          os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
