package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

const (
	otherEnrollmentID = "d6ee489e-8bf9-4888-9912-ace4e6543005"
	strayEnrollmentID = "e7ff589e-8bf9-4888-9912-ace4e6543006"
)

type fakeAttendance struct {
	upserts  []models.AttendanceEntry
	existing map[string]bool
	failFor  map[string]error
	entries  []models.AttendanceEntry
}

func (f *fakeAttendance) UpsertDay(_ context.Context, entry *models.AttendanceEntry) (bool, error) {
	if err, ok := f.failFor[entry.EnrollmentID]; ok {
		return false, err
	}
	f.upserts = append(f.upserts, *entry)
	return !f.existing[entry.EnrollmentID], nil
}

func (f *fakeAttendance) ListByEnrollment(context.Context, string) ([]models.AttendanceEntry, error) {
	return f.entries, nil
}

type fakeAcademicEnrollments struct {
	known     map[string]bool
	statusSet models.EnrollmentStatus
	statusErr error
	detail    *models.EnrollmentDetail
	grades    []models.Grade
}

func (f *fakeAcademicEnrollments) FindByID(context.Context, string) (*models.Enrollment, error) {
	return &models.Enrollment{ID: testEnrollmentID}, nil
}

func (f *fakeAcademicEnrollments) FindDetailByID(context.Context, string) (*models.EnrollmentDetail, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return f.detail, nil
}

func (f *fakeAcademicEnrollments) FilterExisting(_ context.Context, _ string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if f.known[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeAcademicEnrollments) UpdateStatus(_ context.Context, _ string, status models.EnrollmentStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusSet = status
	return nil
}

func (f *fakeAcademicEnrollments) ListGrades(context.Context, string) ([]models.Grade, error) {
	return f.grades, nil
}

func newAcademicFixture(attendance *fakeAttendance, enrollments *fakeAcademicEnrollments, groups *fakeGroups) *AcademicService {
	return NewAcademicService(attendance, enrollments, groups, nil, nil)
}

func TestTakeAttendanceCountsCreatedAndUpdated(t *testing.T) {
	attendance := &fakeAttendance{existing: map[string]bool{otherEnrollmentID: true}}
	enrollments := &fakeAcademicEnrollments{known: map[string]bool{testEnrollmentID: true, otherEnrollmentID: true}}
	svc := newAcademicFixture(attendance, enrollments, &fakeGroups{group: activeGroup()})

	result, err := svc.TakeAttendance(context.Background(), TakeAttendanceRequest{
		GroupID: testGroupID,
		Entries: []AttendanceMark{
			{EnrollmentID: testEnrollmentID, Status: models.AttendanceStatusPresent},
			{EnrollmentID: otherEnrollmentID, Status: models.AttendanceStatusAbsent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Failed)
	require.Len(t, attendance.upserts, 2)
}

func TestTakeAttendanceItemisesUnknownEnrollments(t *testing.T) {
	attendance := &fakeAttendance{}
	enrollments := &fakeAcademicEnrollments{known: map[string]bool{testEnrollmentID: true}}
	svc := newAcademicFixture(attendance, enrollments, &fakeGroups{group: activeGroup()})

	result, err := svc.TakeAttendance(context.Background(), TakeAttendanceRequest{
		GroupID: testGroupID,
		Entries: []AttendanceMark{
			{EnrollmentID: testEnrollmentID, Status: models.AttendanceStatusPresent},
			{EnrollmentID: strayEnrollmentID, Status: models.AttendanceStatusPresent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, strayEnrollmentID, result.Failed[0].EnrollmentID)
	// the valid entry still lands even though a sibling failed
	require.Len(t, attendance.upserts, 1)
}

func TestTakeAttendanceContinuesPastStorageFailures(t *testing.T) {
	attendance := &fakeAttendance{failFor: map[string]error{testEnrollmentID: errors.New("boom")}}
	enrollments := &fakeAcademicEnrollments{known: map[string]bool{testEnrollmentID: true, otherEnrollmentID: true}}
	svc := newAcademicFixture(attendance, enrollments, &fakeGroups{group: activeGroup()})

	result, err := svc.TakeAttendance(context.Background(), TakeAttendanceRequest{
		GroupID: testGroupID,
		Entries: []AttendanceMark{
			{EnrollmentID: testEnrollmentID, Status: models.AttendanceStatusPresent},
			{EnrollmentID: otherEnrollmentID, Status: models.AttendanceStatusJustified},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, testEnrollmentID, result.Failed[0].EnrollmentID)
}

func TestTakeAttendanceNormalisesDay(t *testing.T) {
	attendance := &fakeAttendance{}
	enrollments := &fakeAcademicEnrollments{known: map[string]bool{testEnrollmentID: true}}
	svc := newAcademicFixture(attendance, enrollments, &fakeGroups{group: activeGroup()})

	stamp := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	result, err := svc.TakeAttendance(context.Background(), TakeAttendanceRequest{
		GroupID: testGroupID,
		Date:    &stamp,
		Entries: []AttendanceMark{{EnrollmentID: testEnrollmentID, Status: models.AttendanceStatusPresent}},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), result.Date)
	require.Len(t, attendance.upserts, 1)
	assert.Equal(t, result.Date, attendance.upserts[0].Day)
}

func TestTakeAttendanceRejectsUnknownStatus(t *testing.T) {
	svc := newAcademicFixture(&fakeAttendance{}, &fakeAcademicEnrollments{}, &fakeGroups{group: activeGroup()})

	_, err := svc.TakeAttendance(context.Background(), TakeAttendanceRequest{
		GroupID: testGroupID,
		Entries: []AttendanceMark{{EnrollmentID: testEnrollmentID, Status: "X"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateEnrollmentStatusAllowsAnyTransition(t *testing.T) {
	enrollments := &fakeAcademicEnrollments{
		detail: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: testEnrollmentID, Status: models.EnrollmentStatusWithdrawn}},
	}
	svc := newAcademicFixture(&fakeAttendance{}, enrollments, &fakeGroups{})

	detail, err := svc.UpdateEnrollmentStatus(context.Background(), UpdateEnrollmentStatusRequest{
		EnrollmentID: testEnrollmentID,
		Status:       models.EnrollmentStatusWithdrawn,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, enrollments.statusSet)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, detail.Status)
}

func TestUpdateEnrollmentStatusUnknownEnrollment(t *testing.T) {
	enrollments := &fakeAcademicEnrollments{statusErr: sql.ErrNoRows}
	svc := newAcademicFixture(&fakeAttendance{}, enrollments, &fakeGroups{})

	_, err := svc.UpdateEnrollmentStatus(context.Background(), UpdateEnrollmentStatusRequest{
		EnrollmentID: testEnrollmentID,
		Status:       models.EnrollmentStatusApproved,
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestEnrollmentRecordAssemblesHistory(t *testing.T) {
	attendance := &fakeAttendance{entries: []models.AttendanceEntry{{Status: models.AttendanceStatusPresent}}}
	enrollments := &fakeAcademicEnrollments{
		detail: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: testEnrollmentID}},
		grades: []models.Grade{{Note: "Quiz 1", Value: 7}},
	}
	svc := newAcademicFixture(attendance, enrollments, &fakeGroups{})

	record, err := svc.EnrollmentRecord(context.Background(), testEnrollmentID)
	require.NoError(t, err)
	require.Len(t, record.Grades, 1)
	require.Len(t, record.Attendance, 1)
}
