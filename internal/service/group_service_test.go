package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

const (
	testProgramID   = "f8aa689e-8bf9-4888-9912-ace4e6543007"
	testTeacherID   = "09bb789e-8bf9-4888-9912-ace4e6543008"
	testClassroomID = "1acc889e-8bf9-4888-9912-ace4e6543009"
)

type fakeGroupStore struct {
	created   *models.Group
	updated   *models.Group
	detail    *models.GroupDetail
	schedule  []models.ScheduleSlot
	codeTaken bool
	statusSet models.GroupStatus
}

func (f *fakeGroupStore) List(context.Context, models.GroupFilter) ([]models.GroupDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeGroupStore) FindByID(context.Context, string) (*models.Group, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return &f.detail.Group, nil
}

func (f *fakeGroupStore) FindDetailByID(context.Context, string) (*models.GroupDetail, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return f.detail, nil
}

func (f *fakeGroupStore) ListSchedule(context.Context, string) ([]models.ScheduleSlot, error) {
	return f.schedule, nil
}

func (f *fakeGroupStore) ExistsByCode(context.Context, string, string) (bool, error) {
	return f.codeTaken, nil
}

func (f *fakeGroupStore) Create(_ context.Context, g *models.Group) error {
	g.ID = testGroupID
	f.created = g
	f.detail = &models.GroupDetail{Group: *g}
	f.schedule = g.Schedule
	return nil
}

func (f *fakeGroupStore) Update(_ context.Context, g *models.Group) error {
	f.updated = g
	f.detail = &models.GroupDetail{Group: *g}
	f.schedule = g.Schedule
	return nil
}

func (f *fakeGroupStore) UpdateStatus(_ context.Context, _ string, status models.GroupStatus) error {
	f.statusSet = status
	if f.detail != nil {
		f.detail.Status = status
	}
	return nil
}

type fakeProgramReader struct {
	program *models.Program
	err     error
}

func (f *fakeProgramReader) FindByID(context.Context, string) (*models.Program, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.program, nil
}

type fakeTeacherReader struct {
	teacher *models.Teacher
}

func (f *fakeTeacherReader) FindByID(context.Context, string) (*models.Teacher, error) {
	if f.teacher == nil {
		return nil, sql.ErrNoRows
	}
	return f.teacher, nil
}

type fakeClassroomReader struct {
	classroom *models.Classroom
}

func (f *fakeClassroomReader) FindByID(context.Context, string) (*models.Classroom, error) {
	if f.classroom == nil {
		return nil, sql.ErrNoRows
	}
	return f.classroom, nil
}

func validGroupRequest() SaveGroupRequest {
	return SaveGroupRequest{
		Code:        "G-01",
		ProgramID:   testProgramID,
		TeacherID:   testTeacherID,
		ClassroomID: testClassroomID,
		StartDate:   time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		Schedule: []ScheduleSlotRequest{
			{Day: models.WeekdayMonday, StartTime: "18:00", EndTime: "20:00"},
			{Day: models.WeekdayWednesday, StartTime: "18:00", EndTime: "20:00"},
		},
	}
}

func newGroupFixture(store *fakeGroupStore) *GroupService {
	return NewGroupService(store,
		&fakeProgramReader{program: &models.Program{ID: testProgramID, Active: true}},
		&fakeTeacherReader{teacher: &models.Teacher{ID: testTeacherID, Active: true}},
		&fakeClassroomReader{classroom: &models.Classroom{ID: testClassroomID, Active: true}},
		nil, nil)
}

func TestGroupCreateStartsActiveWithSchedule(t *testing.T) {
	store := &fakeGroupStore{}
	svc := newGroupFixture(store)

	detail, err := svc.Create(context.Background(), validGroupRequest())
	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Equal(t, models.GroupStatusActive, store.created.Status)
	require.Len(t, detail.Schedule, 2)
}

func TestGroupCreateRejectsDuplicateCode(t *testing.T) {
	store := &fakeGroupStore{codeTaken: true}
	svc := newGroupFixture(store)

	_, err := svc.Create(context.Background(), validGroupRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateIdentifier.Code, appErrors.FromError(err).Code)
}

func TestGroupCreateRejectsInactiveProgram(t *testing.T) {
	svc := NewGroupService(&fakeGroupStore{},
		&fakeProgramReader{program: &models.Program{ID: testProgramID, Active: false}},
		&fakeTeacherReader{teacher: &models.Teacher{ID: testTeacherID, Active: true}},
		&fakeClassroomReader{classroom: &models.Classroom{ID: testClassroomID, Active: true}},
		nil, nil)

	_, err := svc.Create(context.Background(), validGroupRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestGroupCreateValidatesScheduleTimes(t *testing.T) {
	svc := newGroupFixture(&fakeGroupStore{})

	req := validGroupRequest()
	req.Schedule[0].EndTime = "17:00"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	req = validGroupRequest()
	req.Schedule[0].StartTime = "6pm"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)

	req = validGroupRequest()
	req.Schedule[0].Day = "FUNDAY"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestGroupCreateRejectsInvertedDates(t *testing.T) {
	svc := newGroupFixture(&fakeGroupStore{})

	req := validGroupRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGroupUpdateStatusKeepsHistory(t *testing.T) {
	store := &fakeGroupStore{
		detail: &models.GroupDetail{Group: models.Group{ID: testGroupID, Status: models.GroupStatusActive}},
	}
	svc := newGroupFixture(store)

	detail, err := svc.UpdateStatus(context.Background(), testGroupID, models.GroupStatusFinished)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusFinished, store.statusSet)
	assert.Equal(t, models.GroupStatusFinished, detail.Status)

	_, err = svc.UpdateStatus(context.Background(), testGroupID, "PAUSED")
	require.Error(t, err)
}
