package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/apps/api/echo"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	aisvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/ai"
	emailsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/email"
	logsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/logger"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database"
	inmemdb "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database/inmem"
	sqlxrepos "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database/sqlx"
	inmemsession "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/session/inmem"
	redissession "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/session/redis"
)

const setupTimeout = 30 * time.Second

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// ClosersParam collects every resource to release on shutdown, in the order provided.
	ClosersParam struct {
		dig.In
		Closers []io.Closer `group:"closers"`
	}

	Repositories struct {
		dig.Out
		Students student.Repository
		Subjects subject.Repository
		Grades   grade.Repository
		Closer   io.Closer `group:"closers"`
	}

	SessionStoreResult struct {
		dig.Out
		Store  report.SessionStore
		Closer io.Closer `group:"closers"`
	}

	GeneratorResult struct {
		dig.Out
		Generator report.Generator
		Closer    io.Closer `group:"closers"`
	}

	ServerParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		StudentSvc *student.Service
		SubjectSvc *subject.Service
		GradeSvc   *grade.Service
		ReportSvc  *report.Service
	}
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.InMemory() {
		loggerParam.Logger.Warn("using the in-memory database: data is lost on exit")
		db := inmemdb.Open()
		return Repositories{
			Students: inmemdb.NewStudentRepository(db),
			Subjects: inmemdb.NewSubjectRepository(db),
			Grades:   inmemdb.NewGradeRepository(db),
			Closer:   nopCloser,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Migrate(db); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	return Repositories{
		Students: sqlxrepos.NewStudentRepository(db),
		Subjects: sqlxrepos.NewSubjectRepository(db),
		Grades:   sqlxrepos.NewGradeRepository(db),
		Closer:   db,
	}
}

// newSessionStore shares report sessions through Redis when configured.
// Otherwise sessions live in memory and a cron job sweeps stale ones.
func newSessionStore(conf *core.Config, logger core.Logger) (SessionStoreResult, error) {
	if conf.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		rdb, err := redissession.Connect(ctx, conf.Redis)
		if err != nil {
			return SessionStoreResult{}, err
		}
		return SessionStoreResult{Store: redissession.NewStore(rdb, conf.Report), Closer: rdb}, nil
	}

	store := inmemsession.NewStore(conf.Report, logger)
	if err := store.StartSweeper(conf.Report.SweepSchedule); err != nil {
		return SessionStoreResult{}, err
	}
	return SessionStoreResult{
		Store:  store,
		Closer: closerFunc(func() error { store.Stop(); return nil }),
	}, nil
}

func newGenerator(conf *core.Config, logger core.Logger) (GeneratorResult, error) {
	gen, err := aisvc.NewGeminiGenerator(context.Background(), conf.AI)
	if err != nil {
		if errors.Cause(err) == aisvc.ErrNoAPIKey {
			logger.Warn("AI reports are disabled: " + err.Error())
			return GeneratorResult{Generator: aisvc.DisabledGenerator{Err: err}, Closer: nopCloser}, nil
		}
		return GeneratorResult{}, err
	}
	return GeneratorResult{Generator: gen, Closer: gen}, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newReportService(
	conf *core.Config,
	logger core.Logger,
	subjectSvc *subject.Service,
	gradeSvc *grade.Service,
	gen report.Generator,
	store report.SessionStore,
	mailSvc core.EmailService,
) (*report.Service, error) {
	return report.NewService(subjectSvc, gradeSvc, gen, store, mailSvc, logger, conf.AI.Timeout)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		StudentSvc: p.StudentSvc,
		SubjectSvc: p.SubjectSvc,
		GradeSvc:   p.GradeSvc,
		ReportSvc:  p.ReportSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newSessionStore))
	must(c.Provide(newGenerator))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(student.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(newReportService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
