package courseService

import (
	"Attendify/internal/api/course"
	courseRepository "Attendify/internal/api/course/repository"
	"Attendify/internal/entity"
	"Attendify/pkg/utils"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	courses     map[string]entity.Course
	sections    map[string]entity.CourseSection
	schedules   map[string]entity.SectionSchedule
	enrollments map[string]entity.SectionEnrollment
	roster      []course.RosterEntry

	createdCourses     []entity.Course
	createdSections    []entity.CourseSection
	createdSchedules   []entity.SectionSchedule
	createdEnrollments []entity.SectionEnrollment
	deletedSchedules   []string

	lastLimit  int
	lastOffset int

	enrollmentExists bool
}

func (f *fakeStore) NewClient(bool) (courseRepository.Client, error) {
	return courseRepository.Client{
		Courses:     f,
		Sections:    f,
		Enrollments: f,
		Commit:      func() error { return nil },
		Rollback:    func() error { return nil },
	}, nil
}

func (f *fakeStore) CreateCourse(_ context.Context, item entity.Course) error {
	for _, existing := range f.courses {
		if existing.Code == item.Code {
			return course.ErrCourseCodeExists
		}
	}
	f.courses[item.ID] = item
	f.createdCourses = append(f.createdCourses, item)
	return nil
}

func (f *fakeStore) GetCourseByID(_ context.Context, id string) (entity.Course, error) {
	item, ok := f.courses[id]
	if !ok {
		return entity.Course{}, course.ErrCourseNotFound
	}
	return item, nil
}

func (f *fakeStore) GetCourses(_ context.Context, limit, offset int) ([]entity.Course, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	return nil, nil
}

func (f *fakeStore) UpdateCourse(_ context.Context, item entity.Course) error {
	if _, ok := f.courses[item.ID]; !ok {
		return course.ErrCourseNotFound
	}
	f.courses[item.ID] = item
	return nil
}

func (f *fakeStore) DeleteCourse(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return course.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeStore) CreateSection(_ context.Context, section entity.CourseSection) error {
	f.sections[section.ID] = section
	f.createdSections = append(f.createdSections, section)
	return nil
}

func (f *fakeStore) GetSectionByID(_ context.Context, id string) (entity.CourseSection, error) {
	section, ok := f.sections[id]
	if !ok {
		return entity.CourseSection{}, course.ErrSectionNotFound
	}
	return section, nil
}

func (f *fakeStore) GetSectionsByCourseID(_ context.Context, courseID string) ([]entity.CourseSection, error) {
	var out []entity.CourseSection
	for _, section := range f.sections {
		if section.CourseID == courseID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSectionsByFacultyID(_ context.Context, facultyID string) ([]entity.CourseSection, error) {
	var out []entity.CourseSection
	for _, section := range f.sections {
		if section.FacultyID == facultyID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateSection(_ context.Context, section entity.CourseSection) error {
	if _, ok := f.sections[section.ID]; !ok {
		return course.ErrSectionNotFound
	}
	f.sections[section.ID] = section
	return nil
}

func (f *fakeStore) DeleteSection(_ context.Context, id string) error {
	if _, ok := f.sections[id]; !ok {
		return course.ErrSectionNotFound
	}
	delete(f.sections, id)
	return nil
}

func (f *fakeStore) CreateSchedule(_ context.Context, schedule entity.SectionSchedule) error {
	f.schedules[schedule.ID] = schedule
	f.createdSchedules = append(f.createdSchedules, schedule)
	return nil
}

func (f *fakeStore) GetScheduleByID(_ context.Context, id string) (entity.SectionSchedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return entity.SectionSchedule{}, course.ErrScheduleNotFound
	}
	return schedule, nil
}

func (f *fakeStore) GetSchedulesBySectionID(_ context.Context, sectionID string) ([]entity.SectionSchedule, error) {
	var out []entity.SectionSchedule
	for _, schedule := range f.schedules {
		if schedule.SectionID == sectionID {
			out = append(out, schedule)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSchedule(_ context.Context, id string) error {
	if _, ok := f.schedules[id]; !ok {
		return course.ErrScheduleNotFound
	}
	delete(f.schedules, id)
	f.deletedSchedules = append(f.deletedSchedules, id)
	return nil
}

func (f *fakeStore) CreateEnrollment(_ context.Context, enrollment entity.SectionEnrollment) error {
	if f.enrollmentExists {
		return course.ErrAlreadyEnrolled
	}
	f.enrollments[enrollment.ID] = enrollment
	f.createdEnrollments = append(f.createdEnrollments, enrollment)
	return nil
}

func (f *fakeStore) GetEnrollmentByID(_ context.Context, id string) (entity.SectionEnrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return entity.SectionEnrollment{}, course.ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (f *fakeStore) GetEnrollmentBySectionAndStudent(_ context.Context, sectionID, studentID string) (entity.SectionEnrollment, error) {
	for _, enrollment := range f.enrollments {
		if enrollment.SectionID == sectionID && enrollment.StudentID == studentID {
			return enrollment, nil
		}
	}
	return entity.SectionEnrollment{}, course.ErrEnrollmentNotFound
}

func (f *fakeStore) GetEnrollmentsByStudentID(context.Context, string) ([]course.StudentEnrollment, error) {
	return nil, nil
}

func (f *fakeStore) GetRosterBySectionID(context.Context, string) ([]course.RosterEntry, error) {
	return f.roster, nil
}

func (f *fakeStore) UpdateEnrollmentStatus(_ context.Context, enrollment entity.SectionEnrollment) error {
	if _, ok := f.enrollments[enrollment.ID]; !ok {
		return course.ErrEnrollmentNotFound
	}
	f.enrollments[enrollment.ID] = enrollment
	return nil
}

func newCourseFixture(t *testing.T) (CourseService, *fakeStore) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := &fakeStore{
		courses: map[string]entity.Course{
			"course-1": {ID: "course-1", Code: "IF2110", Name: "Algorithms and Data Structures", CreatedBy: "faculty-1"},
		},
		sections: map[string]entity.CourseSection{
			"section-1": {
				ID:           "section-1",
				CourseID:     "course-1",
				FacultyID:    "faculty-1",
				AcademicYear: "2024/2025",
				Semester:     "odd",
				Room:         "7609",
				RadiusM:      100,
			},
		},
		schedules: map[string]entity.SectionSchedule{
			"sched-1": {ID: "sched-1", SectionID: "section-1", DayOfWeek: 2, StartTime: "09:55", EndTime: "11:00"},
		},
		enrollments: map[string]entity.SectionEnrollment{
			"enrollment-1": {
				ID:        "enrollment-1",
				SectionID: "section-1",
				StudentID: "student-1",
				Status:    string(entity.EnrollmentStatusPending),
			},
		},
	}

	return New(log, store, utils.New()), store
}

func TestCreateCourse(t *testing.T) {
	svc, store := newCourseFixture(t)

	resp, err := svc.Course().CreateCourse(context.Background(), "faculty-1", course.CreateCourseRequest{
		Code: "IF3110",
		Name: "Web Application Development",
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.ID)
	require.Equal(t, "IF3110", resp.Code)
	require.Equal(t, "Web Application Development", resp.Name)
	require.Equal(t, "faculty-1", resp.CreatedBy)

	require.Len(t, store.createdCourses, 1)
	require.Equal(t, resp.ID, store.createdCourses[0].ID)

	_, err = svc.Course().CreateCourse(context.Background(), "faculty-1", course.CreateCourseRequest{
		Code: "IF2110",
		Name: "Duplicate Code",
	})
	require.ErrorIs(t, err, course.ErrCourseCodeExists)
}

func TestGetCoursesClampsPaging(t *testing.T) {
	svc, store := newCourseFixture(t)

	cases := []struct {
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{0, 0, 20, 0},
		{-1, -3, 20, 0},
		{1000, 10, 100, 10},
		{50, 5, 50, 5},
	}

	for _, tc := range cases {
		_, err := svc.Course().GetCourses(context.Background(), tc.limit, tc.offset)
		require.NoError(t, err)
		require.Equal(t, tc.wantLimit, store.lastLimit)
		require.Equal(t, tc.wantOffset, store.lastOffset)
	}
}

func TestCreateSectionResolvesParentCourse(t *testing.T) {
	svc, store := newCourseFixture(t)

	resp, err := svc.Section().CreateSection(context.Background(), "faculty-1", course.CreateSectionRequest{
		CourseID:     "course-1",
		AcademicYear: "2024/2025",
		Semester:     "even",
		Room:         "7602",
		Latitude:     -6.2,
		Longitude:    106.8,
		RadiusM:      150,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.ID)
	require.Equal(t, "IF2110", resp.CourseCode)
	require.Equal(t, "Algorithms and Data Structures", resp.CourseName)
	require.Equal(t, "faculty-1", resp.FacultyID)

	require.Len(t, store.createdSections, 1)
	require.Equal(t, "course-1", store.createdSections[0].CourseID)

	_, err = svc.Section().CreateSection(context.Background(), "faculty-1", course.CreateSectionRequest{
		CourseID: "ghost",
	})
	require.ErrorIs(t, err, course.ErrCourseNotFound)
}

func TestGetSectionByIDIncludesSchedules(t *testing.T) {
	svc, _ := newCourseFixture(t)

	resp, err := svc.Section().GetSectionByID(context.Background(), "section-1")
	require.NoError(t, err)

	require.Equal(t, "section-1", resp.ID)
	require.Len(t, resp.Schedules, 1)
	require.Equal(t, "sched-1", resp.Schedules[0].ID)
	require.Equal(t, "09:55", resp.Schedules[0].StartTime)
}

func TestUpdateSectionOwnership(t *testing.T) {
	svc, store := newCourseFixture(t)

	req := course.UpdateSectionRequest{
		AcademicYear: "2025/2026",
		Semester:     "odd",
		Room:         "7710",
		RadiusM:      200,
	}

	err := svc.Section().UpdateSection(context.Background(), "faculty-2", "section-1", req)
	require.ErrorIs(t, err, course.ErrNotSectionOwner)
	require.Equal(t, "7609", store.sections["section-1"].Room)

	err = svc.Section().UpdateSection(context.Background(), "faculty-1", "section-1", req)
	require.NoError(t, err)
	require.Equal(t, "7710", store.sections["section-1"].Room)
	require.Equal(t, float64(200), store.sections["section-1"].RadiusM)
}

func TestDeleteSectionOwnership(t *testing.T) {
	svc, store := newCourseFixture(t)

	err := svc.Section().DeleteSection(context.Background(), "faculty-2", "section-1")
	require.ErrorIs(t, err, course.ErrNotSectionOwner)

	err = svc.Section().DeleteSection(context.Background(), "faculty-1", "section-1")
	require.NoError(t, err)
	require.NotContains(t, store.sections, "section-1")
}

func TestAddSchedule(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		resp, err := svc.Section().AddSchedule(context.Background(), "faculty-1", "section-1", course.CreateScheduleRequest{
			DayOfWeek: 4,
			StartTime: "13:00",
			EndTime:   "15:00",
		})
		require.NoError(t, err)

		require.NotEmpty(t, resp.ID)
		require.Equal(t, "section-1", resp.SectionID)
		require.Equal(t, 4, resp.DayOfWeek)

		require.Len(t, store.createdSchedules, 1)
		require.Equal(t, "13:00", store.createdSchedules[0].StartTime)
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		_, err := svc.Section().AddSchedule(context.Background(), "faculty-1", "section-1", course.CreateScheduleRequest{
			DayOfWeek: 4,
			StartTime: "1pm",
			EndTime:   "15:00",
		})
		require.ErrorIs(t, err, course.ErrInvalidScheduleTime)

		_, err = svc.Section().AddSchedule(context.Background(), "faculty-1", "section-1", course.CreateScheduleRequest{
			DayOfWeek: 4,
			StartTime: "13:00",
			EndTime:   "25:99",
		})
		require.ErrorIs(t, err, course.ErrInvalidScheduleTime)

		require.Empty(t, store.createdSchedules)
	})

	t.Run("not the section owner", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		_, err := svc.Section().AddSchedule(context.Background(), "faculty-2", "section-1", course.CreateScheduleRequest{
			DayOfWeek: 4,
			StartTime: "13:00",
			EndTime:   "15:00",
		})
		require.ErrorIs(t, err, course.ErrNotSectionOwner)
	})

	t.Run("unknown section", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		_, err := svc.Section().AddSchedule(context.Background(), "faculty-1", "ghost", course.CreateScheduleRequest{
			DayOfWeek: 4,
			StartTime: "13:00",
			EndTime:   "15:00",
		})
		require.ErrorIs(t, err, course.ErrSectionNotFound)
	})
}

func TestRemoveSchedule(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		err := svc.Section().RemoveSchedule(context.Background(), "faculty-1", "section-1", "sched-1")
		require.NoError(t, err)
		require.Equal(t, []string{"sched-1"}, store.deletedSchedules)
	})

	t.Run("schedule of another section", func(t *testing.T) {
		svc, store := newCourseFixture(t)
		store.schedules["sched-2"] = entity.SectionSchedule{
			ID:        "sched-2",
			SectionID: "section-2",
			DayOfWeek: 5,
			StartTime: "08:00",
			EndTime:   "10:00",
		}

		err := svc.Section().RemoveSchedule(context.Background(), "faculty-1", "section-1", "sched-2")
		require.ErrorIs(t, err, course.ErrScheduleNotFound)
		require.Empty(t, store.deletedSchedules)
	})

	t.Run("not the section owner", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		err := svc.Section().RemoveSchedule(context.Background(), "faculty-2", "section-1", "sched-1")
		require.ErrorIs(t, err, course.ErrNotSectionOwner)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		err := svc.Section().RemoveSchedule(context.Background(), "faculty-1", "section-1", "ghost")
		require.ErrorIs(t, err, course.ErrScheduleNotFound)
	})
}

func TestRequestEnrollment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		resp, err := svc.Enrollment().RequestEnrollment(context.Background(), "student-2", "section-1")
		require.NoError(t, err)

		require.NotEmpty(t, resp.ID)
		require.Equal(t, string(entity.EnrollmentStatusPending), resp.Status)
		require.Equal(t, "student-2", resp.StudentID)

		require.Len(t, store.createdEnrollments, 1)
		require.Equal(t, string(entity.EnrollmentStatusPending), store.createdEnrollments[0].Status)
	})

	t.Run("unknown section", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		_, err := svc.Enrollment().RequestEnrollment(context.Background(), "student-2", "ghost")
		require.ErrorIs(t, err, course.ErrSectionNotFound)
	})

	t.Run("duplicate request", func(t *testing.T) {
		svc, store := newCourseFixture(t)
		store.enrollmentExists = true

		_, err := svc.Enrollment().RequestEnrollment(context.Background(), "student-1", "section-1")
		require.ErrorIs(t, err, course.ErrAlreadyEnrolled)
	})
}

func TestGetRosterOwnership(t *testing.T) {
	svc, store := newCourseFixture(t)
	store.roster = []course.RosterEntry{
		{EnrollmentID: "enrollment-1", StudentID: "student-1", StudentName: "Putri Maharani", Status: string(entity.EnrollmentStatusPending)},
	}

	_, err := svc.Enrollment().GetRoster(context.Background(), "faculty-2", "section-1")
	require.ErrorIs(t, err, course.ErrNotSectionOwner)

	roster, err := svc.Enrollment().GetRoster(context.Background(), "faculty-1", "section-1")
	require.NoError(t, err)
	require.Equal(t, store.roster, roster)
}

func TestDecideEnrollment(t *testing.T) {
	t.Run("approves a pending request", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		err := svc.Enrollment().DecideEnrollment(context.Background(), "faculty-1", "enrollment-1", course.DecideEnrollmentRequest{
			Status: string(entity.EnrollmentStatusEnrolled),
		})
		require.NoError(t, err)

		decided := store.enrollments["enrollment-1"]
		require.Equal(t, string(entity.EnrollmentStatusEnrolled), decided.Status)
		require.Equal(t, "faculty-1", decided.DecidedBy)
	})

	t.Run("invalid decision", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		err := svc.Enrollment().DecideEnrollment(context.Background(), "faculty-1", "enrollment-1", course.DecideEnrollmentRequest{
			Status: "maybe",
		})
		require.ErrorIs(t, err, course.ErrInvalidDecision)
	})

	t.Run("not the section owner", func(t *testing.T) {
		svc, store := newCourseFixture(t)

		err := svc.Enrollment().DecideEnrollment(context.Background(), "faculty-2", "enrollment-1", course.DecideEnrollmentRequest{
			Status: string(entity.EnrollmentStatusRejected),
		})
		require.ErrorIs(t, err, course.ErrNotSectionOwner)
		require.Equal(t, string(entity.EnrollmentStatusPending), store.enrollments["enrollment-1"].Status)
	})

	t.Run("already decided", func(t *testing.T) {
		svc, store := newCourseFixture(t)
		decided := store.enrollments["enrollment-1"]
		decided.Status = string(entity.EnrollmentStatusEnrolled)
		store.enrollments["enrollment-1"] = decided

		err := svc.Enrollment().DecideEnrollment(context.Background(), "faculty-1", "enrollment-1", course.DecideEnrollmentRequest{
			Status: string(entity.EnrollmentStatusRejected),
		})
		require.ErrorIs(t, err, course.ErrEnrollmentDecided)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		svc, _ := newCourseFixture(t)

		err := svc.Enrollment().DecideEnrollment(context.Background(), "faculty-1", "ghost", course.DecideEnrollmentRequest{
			Status: string(entity.EnrollmentStatusEnrolled),
		})
		require.ErrorIs(t, err, course.ErrEnrollmentNotFound)
	})
}
