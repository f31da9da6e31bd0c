package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/thinkwise/apps/api/echo"
	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/report"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
	cachesvc "github.com/trezcool/thinkwise/services/cache"
	emailsvc "github.com/trezcool/thinkwise/services/email"
	logsvc "github.com/trezcool/thinkwise/services/logger"
	"github.com/trezcool/thinkwise/storage/database"
	dummydb "github.com/trezcool/thinkwise/storage/database/dummy"
	sqlxrepos "github.com/trezcool/thinkwise/storage/database/sqlx"
)

type repositories struct {
	teachers teacher.Repository
	students student.Repository
	rooms    room.Repository
	courses  course.Repository
	payments payment.Repository
	expenses expense.Repository
	users    user.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Flush()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, closeDB, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up cache
	cache := cachesvc.NewMemoryCache()
	if conf.Cache.RedisURL != "" {
		redisCache, closeCache, err := cachesvc.NewRedisCache(context.Background(), conf.Cache.RedisURL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
		}
		defer closeCache()
		cache = redisCache
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	opts := &echoapi.Options{
		Address:      conf.Server.Host,
		Debug:        conf.Debug,
		AllowOrigins: conf.Server.AllowOrigins,
		Logger:       logger,
		CourseSvc:    course.NewService(repos.courses, repos.teachers, repos.students, repos.rooms, cache),
		TeacherSvc:   teacher.NewService(repos.teachers),
		StudentSvc:   student.NewService(repos.students),
		RoomSvc:      room.NewService(repos.rooms),
		PaymentSvc:   payment.NewService(repos.payments, repos.students, mailSvc, cache),
		ExpenseSvc:   expense.NewService(repos.expenses, cache),
		ReportSvc: report.NewService(report.Repositories{
			Courses:  repos.courses,
			Students: repos.students,
			Teachers: repos.teachers,
			Rooms:    repos.rooms,
			Payments: repos.payments,
			Expenses: repos.expenses,
		}, cache, conf.Cache.TTL),
		UserSvc: user.NewService(repos.users),
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(opts)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpStorage opens the database selected by conf.Database.Engine. The memory engine loses
// everything on exit and is meant for demos.
func setUpStorage(conf *core.Config) (repositories, func() error, error) {
	if conf.Database.Engine == "memory" {
		db, err := dummydb.Open()
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			teachers: dummydb.NewTeacherRepository(db),
			students: dummydb.NewStudentRepository(db),
			rooms:    dummydb.NewRoomRepository(db),
			courses:  dummydb.NewCourseRepository(db),
			payments: dummydb.NewPaymentRepository(db),
			expenses: dummydb.NewExpenseRepository(db),
			users:    dummydb.NewUserRepository(db),
		}, func() error { return nil }, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return repositories{}, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return repositories{}, nil, err
	}
	return repositories{
		teachers: sqlxrepos.NewTeacherRepository(db),
		students: sqlxrepos.NewStudentRepository(db),
		rooms:    sqlxrepos.NewRoomRepository(db),
		courses:  sqlxrepos.NewCourseRepository(db),
		payments: sqlxrepos.NewPaymentRepository(db),
		expenses: sqlxrepos.NewExpenseRepository(db),
		users:    sqlxrepos.NewUserRepository(db),
	}, db.Close, nil
}
