// Package digcontainer wires the API binary with go.uber.org/dig.
package digcontainer

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/portal"
	"github.com/trezcool/academia/core/student"
	cachesvc "github.com/trezcool/academia/services/cache"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	metricsvc "github.com/trezcool/academia/services/metrics"
	"github.com/trezcool/academia/storage/database"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	pgrepos "github.com/trezcool/academia/storage/database/postgres"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// StoreCloser releases the record store.
	StoreCloser func() error

	Store struct {
		dig.Out
		Tx         core.Transactor
		Accounts   account.Repository
		Students   student.Repository
		Grades     grade.Repository
		Attendance attendance.Repository
		Close      StoreCloser
	}

	PortalParams struct {
		dig.In
		Logger     core.Logger
		Tx         core.Transactor
		Accounts   *account.Service
		Students   *student.Service
		Grades     *grade.Service
		Attendance *attendance.Service
		Engine     *analytics.Engine
		Gate       *access.Gate
		Cache      analytics.Cache
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) (Store, error) {
	switch conf.Storage {
	case storageMemory:
		loggerParam.Logger.Info("using the in-memory record store: data is lost on restart")
		db := inmemdb.Open()
		return Store{
			Tx:         db,
			Accounts:   inmemdb.NewAccountRepository(db),
			Students:   inmemdb.NewStudentRepository(db),
			Grades:     inmemdb.NewGradeRepository(db),
			Attendance: inmemdb.NewAttendanceRepository(db),
			Close:      func() error { return nil },
		}, nil

	case storagePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return Store{}, errors.Wrap(err, "creating database")
		}
		sqlDB, err := database.Open(ctx, conf)
		if err != nil {
			return Store{}, err
		}
		if err = database.Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return Store{}, err
		}
		db := pgrepos.New(sqlDB)
		return Store{
			Tx:         db,
			Accounts:   pgrepos.NewAccountRepository(db),
			Students:   pgrepos.NewStudentRepository(db),
			Grades:     pgrepos.NewGradeRepository(db),
			Attendance: pgrepos.NewAttendanceRepository(db),
			Close:      sqlDB.Close,
		}, nil
	}
	return Store{}, errors.Errorf("unknown storage %q", conf.Storage)
}

// newCache uses redis when configured. An unreachable redis is not fatal: aggregates are then computed fresh.
func newCache(conf *core.Config, logger core.Logger) analytics.Cache {
	if !conf.Redis.CacheEnabled() {
		return analytics.NopCache()
	}
	client := cachesvc.NewRedisClient(conf)
	cache := cachesvc.NewRedisCache(client, conf.Redis.CacheTTL)
	if !cache.Healthy(context.Background()) {
		logger.Warn(fmt.Sprintf("redis at %s is unreachable; aggregates will be computed on every request", conf.Redis.Addr))
	}
	return cache
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	account.InitValidators(validate, translator)
	grade.InitValidators(validate, translator)
	return validate
}

func newMetrics() *metricsvc.Metrics {
	return metricsvc.New("academia", portal.Operations...)
}

func newGate(accounts *account.Service, students *student.Service, metrics *metricsvc.Metrics) *access.Gate {
	return access.NewGate(accounts, students, metrics)
}

func newEngine(grades grade.Repository, attendances attendance.Repository, students student.Repository) *analytics.Engine {
	return analytics.NewEngine(grades, attendances, students)
}

func newPortal(p PortalParams) *portal.Portal {
	return portal.New(portal.Deps{
		Logger:     p.Logger,
		Tx:         p.Tx,
		Accounts:   p.Accounts,
		Students:   p.Students,
		Grades:     p.Grades,
		Attendance: p.Attendance,
		Engine:     p.Engine,
		Gate:       p.Gate,
		Cache:      p.Cache,
	})
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	p *portal.Portal,
	translator ut.Translator,
	metrics *metricsvc.Metrics,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Portal:     p,
		Translator: translator,
		Metrics:    metrics,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newCache))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newMetrics))
	must(c.Provide(account.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newEngine))
	must(c.Provide(newGate))
	must(c.Provide(newPortal))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
