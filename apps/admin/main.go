package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/grade"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	pgrepos "github.com/trezcool/academia/storage/database/postgres"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	core.ParseEmailTemplates(logger, false)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	account.InitValidators(validate, translator)
	grade.InitValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	cli := commandLine{}
	if conf.Storage == "postgres" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err = database.CreateIfNotExist(ctx, conf); err != nil {
			cancel()
			logger.Fatal("setting up database", err)
		}
		db, err := database.Open(ctx, conf)
		cancel()
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()

		cli.db = db.DB
		cli.accounts = account.NewService(conf, pgrepos.NewAccountRepository(pgrepos.New(db)), mailSvc, validate)
	} else {
		logger.Warn("storage is " + conf.Storage + ": changes are lost when this command exits")
		cli.accounts = account.NewService(conf, inmemdb.NewAccountRepository(inmemdb.Open()), mailSvc, validate)
	}

	if err = cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
