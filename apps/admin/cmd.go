package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
)

const (
	cmdMigrate       = "migrate"
	cmdAddUser       = "adduser"
	cmdResetPassword = "resetpassword"
	cmdSeed          = "seed"
	cmdEnroll        = "enroll"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator

	usrSvc     *user.Service
	teacherSvc *teacher.Service
	studentSvc *student.Service
	roomSvc    *room.Service
	courseSvc  *course.Service
}

func newCommandLine(out io.Writer) *commandLine {
	validate, translator := core.NewValidator()
	school.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return &commandLine{out: out, validate: validate, translator: translator}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command on the database (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -username USERNAME -email EMAIL [-admin] - create a staff user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  seed -file ROSTER.yaml - load rooms, teachers, students and courses")
	fmt.Fprintln(cli.out, "  enroll -url URL -username USERNAME -course ID -student ID - enroll a student through the API")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet(cmdAddUser, flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant access to the staff accounts.")

	resetPasswordCmd := flag.NewFlagSet(cmdResetPassword, flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	seedCmd := flag.NewFlagSet(cmdSeed, flag.ContinueOnError)
	seedFile := seedCmd.String("file", "", "The YAML roster to load.")

	enrollCmd := flag.NewFlagSet(cmdEnroll, flag.ContinueOnError)
	enrollURL := enrollCmd.String("url", "http://localhost:8080", "The API base URL.")
	enrollUname := enrollCmd.String("username", "", "The staff username. The password will be prompted next.")
	enrollCourse := enrollCmd.Int("course", 0, "The course id.")
	enrollStudent := enrollCmd.Int("student", 0, "The student id.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, seedCmd, enrollCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case cmdMigrate:
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case cmdAddUser:
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserName == "" || (*addUserUname == "" && *addUserEmail == "") {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case cmdResetPassword:
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case cmdSeed:
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)

	case cmdEnroll:
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *enrollUname == "" || *enrollCourse <= 0 || *enrollStudent <= 0 {
			enrollCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			enrollCmd.Usage()
			return errHelp
		}
		return cli.enroll(*enrollURL, *enrollUname, pwd, *enrollCourse, *enrollStudent)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// describe renders validation errors field by field.
func (cli *commandLine) describe(err error) string {
	switch vErr := pkgerrors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(vErr))
		for _, fErr := range vErr {
			msgs = append(msgs, fErr.Field()+": "+fErr.Translate(cli.translator))
		}
		sort.Strings(msgs)
		return strings.Join(msgs, "; ")
	case *core.ValidationError:
		if len(vErr.Fields) == 0 {
			return vErr.Error()
		}
		msgs := make([]string, 0, len(vErr.Fields))
		for _, fErr := range vErr.Fields {
			msgs = append(msgs, fErr.Field+": "+fErr.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
