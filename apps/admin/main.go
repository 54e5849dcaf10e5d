package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	aisvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/ai"
	emailsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/email"
	logsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/logger"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database"
	sqlxrepos "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database/sqlx"
	inmemsession "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/session/inmem"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)

	// set up services
	gen, closeGen := newGenerator(conf)
	subjectSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	gradeSvc := grade.NewService(sqlxrepos.NewGradeRepository(db))
	reportSvc, err := report.NewService(
		subjectSvc, gradeSvc, gen,
		inmemsession.NewStore(conf.Report, logger),
		emailsvc.NewConsoleService(conf, logger),
		logger, conf.AI.Timeout,
	)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:         db,
		studentSvc: student.NewService(sqlxrepos.NewStudentRepository(db)),
		subjectSvc: subjectSvc,
		gradeSvc:   gradeSvc,
		reportSvc:  reportSvc,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)

	_ = closeGen()
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("\nerror: " + err.Error())
		}
		os.Exit(1)
	}
}

func newGenerator(conf *core.Config) (report.Generator, func() error) {
	gen, err := aisvc.NewGeminiGenerator(context.Background(), conf.AI)
	if err == aisvc.ErrNoAPIKey {
		return aisvc.DisabledGenerator{Err: err}, func() error { return nil }
	}
	errAndDie(err)
	return gen, gen.Close
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
