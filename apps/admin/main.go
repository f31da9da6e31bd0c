package main

import (
	"log"
	"os"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
	cachesvc "github.com/trezcool/thinkwise/services/cache"
	"github.com/trezcool/thinkwise/storage/database"
	sqlxrepos "github.com/trezcool/thinkwise/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := newCommandLine(os.Stdout)

	// enroll goes through the REST API and does not need the database
	if len(os.Args) > 1 && os.Args[1] != cmdEnroll {
		db, err := database.Open(core.Conf)
		errAndDie(err)
		defer db.Close()

		teachers := sqlxrepos.NewTeacherRepository(db)
		students := sqlxrepos.NewStudentRepository(db)
		rooms := sqlxrepos.NewRoomRepository(db)
		courses := sqlxrepos.NewCourseRepository(db)

		cli.db = db.DB
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db))
		cli.teacherSvc = teacher.NewService(teachers)
		cli.studentSvc = student.NewService(students)
		cli.roomSvc = room.NewService(rooms)
		cli.courseSvc = course.NewService(courses, teachers, students, rooms, cachesvc.NewMemoryCache())
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", cli.describe(err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
