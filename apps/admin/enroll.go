package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/pkg/client"
)

var errCourseInactive = errors.New("course is not active")

type apiClient interface {
	Login(ctx context.Context, username, password string) error
	GetCourse(ctx context.Context, id int) (school.Course, error)
	GetStudent(ctx context.Context, id int) (school.Student, error)
	AddStudent(ctx context.Context, courseID, studentID int) (school.Course, error)
}

var newClientFunc = func(baseURL string) apiClient { return client.NewClient(baseURL) } // mockable

// enroll checks the assignment locally with the matcher before asking the API, so that a refused
// enrollment is explained without a round trip.
func (cli *commandLine) enroll(baseURL, uname, pwd string, courseID, studentID int) error {
	ctx := context.Background()
	api := newClientFunc(baseURL)

	if err := api.Login(ctx, uname, pwd); err != nil {
		return errors.Wrap(err, "logging in")
	}
	crs, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	s, err := api.GetStudent(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}

	if !crs.Active {
		return errCourseInactive
	}
	if err = matcher.ValidateAssignment(crs, s); err != nil {
		return err
	}

	crs, err = api.AddStudent(ctx, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	fmt.Fprintf(cli.out, "%s %s enrolled in %q (%d students)\n", s.FirstName, s.LastName, crs.Name, len(crs.Students))
	return nil
}
