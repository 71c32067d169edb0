package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/internal/repository"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

const (
	testStudentID    = "a3bb189e-8bf9-4888-9912-ace4e6543002"
	testGroupID      = "b4cc289e-8bf9-4888-9912-ace4e6543003"
	testEnrollmentID = "c5dd389e-8bf9-4888-9912-ace4e6543004"
)

type fakeEnrollments struct {
	enrollment *models.Enrollment
	detail     *models.EnrollmentDetail
	grades     []models.Grade
	created    *models.Enrollment
	createErr  error
	findErr    error
	noteExists bool
	addedGrade *models.Grade
	byGroup    []models.EnrollmentDetail
}

func (f *fakeEnrollments) FindByID(context.Context, string) (*models.Enrollment, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.enrollment, nil
}

func (f *fakeEnrollments) FindDetailByID(context.Context, string) (*models.EnrollmentDetail, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return f.detail, nil
}

func (f *fakeEnrollments) Create(_ context.Context, e *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = testEnrollmentID
	f.created = e
	return nil
}

func (f *fakeEnrollments) ListByGroup(context.Context, string) ([]models.EnrollmentDetail, error) {
	return f.byGroup, nil
}

func (f *fakeEnrollments) ListGrades(context.Context, string) ([]models.Grade, error) {
	return f.grades, nil
}

func (f *fakeEnrollments) GradeNoteExists(context.Context, string, string) (bool, error) {
	return f.noteExists, nil
}

func (f *fakeEnrollments) AddGrade(_ context.Context, g *models.Grade) error {
	f.addedGrade = g
	return nil
}

type fakePayments struct {
	created   *models.Payment
	createErr error
	recent    []models.PaymentDetail
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = "payment-1"
	f.created = p
	return nil
}

func (f *fakePayments) ListRecent(context.Context, int) ([]models.PaymentDetail, error) {
	return f.recent, nil
}

type fakeStudents struct {
	student *models.Student
	err     error
}

func (f *fakeStudents) FindByID(context.Context, string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.student, nil
}

type fakeGroups struct {
	group *models.Group
	err   error
}

func (f *fakeGroups) FindByID(context.Context, string) (*models.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.group, nil
}

func newFinanceFixture(enrollments *fakeEnrollments, payments *fakePayments, students *fakeStudents, groups *fakeGroups) *FinanceService {
	cache := NewCacheService(nil, nil, 0, nil, false)
	return NewFinanceService(enrollments, payments, students, groups, cache, NewMetricsService(), nil, nil, 10)
}

func activeStudent() *models.Student {
	return &models.Student{ID: testStudentID, FirstName: "Ana", LastName: "Ruiz", Active: true}
}

func activeGroup() *models.Group {
	return &models.Group{ID: testGroupID, Code: "G-01", Status: models.GroupStatusActive}
}

func TestEnrollCreatesEnrollment(t *testing.T) {
	enrollments := &fakeEnrollments{
		detail: &models.EnrollmentDetail{
			Enrollment:  models.Enrollment{ID: testEnrollmentID, Status: models.EnrollmentStatusEnrolled},
			ProgramCost: 500,
		},
	}
	svc := newFinanceFixture(enrollments, &fakePayments{}, &fakeStudents{student: activeStudent()}, &fakeGroups{group: activeGroup()})

	detail, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: testStudentID, GroupID: testGroupID})
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, testEnrollmentID, detail.ID)
	require.NotNil(t, enrollments.created)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollments.created.Status)
}

func TestEnrollRejectsDuplicatePair(t *testing.T) {
	enrollments := &fakeEnrollments{createErr: repository.ErrDuplicatePair}
	svc := newFinanceFixture(enrollments, &fakePayments{}, &fakeStudents{student: activeStudent()}, &fakeGroups{group: activeGroup()})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: testStudentID, GroupID: testGroupID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestEnrollRejectsInactiveStudent(t *testing.T) {
	inactive := activeStudent()
	inactive.Active = false
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{student: inactive}, &fakeGroups{group: activeGroup()})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: testStudentID, GroupID: testGroupID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsNonActiveGroup(t *testing.T) {
	finished := activeGroup()
	finished.Status = models.GroupStatusFinished
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{student: activeStudent()}, &fakeGroups{group: finished})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: testStudentID, GroupID: testGroupID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnknownStudent(t *testing.T) {
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{err: sql.ErrNoRows}, &fakeGroups{group: activeGroup()})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: testStudentID, GroupID: testGroupID})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestRecordPaymentPersistsPayment(t *testing.T) {
	payments := &fakePayments{}
	svc := newFinanceFixture(&fakeEnrollments{}, payments, &fakeStudents{}, &fakeGroups{})

	payment, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		EnrollmentID: testEnrollmentID,
		Amount:       150,
		Method:       models.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.NotNil(t, payments.created)
	assert.Equal(t, 150.0, payment.Amount)
	assert.Equal(t, models.PaymentMethodCash, payment.Method)
	assert.False(t, payment.PaidAt.IsZero())
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{}, &fakeGroups{})

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		EnrollmentID: testEnrollmentID,
		Amount:       0,
		Method:       models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{}, &fakeGroups{})

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		EnrollmentID: testEnrollmentID,
		Amount:       50,
		Method:       "CHECK",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordPaymentUnknownEnrollment(t *testing.T) {
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{createErr: sql.ErrNoRows}, &fakeStudents{}, &fakeGroups{})

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		EnrollmentID: testEnrollmentID,
		Amount:       50,
		Method:       models.PaymentMethodCard,
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestRecordGradeRejectsDuplicateNote(t *testing.T) {
	enrollments := &fakeEnrollments{
		enrollment: &models.Enrollment{ID: testEnrollmentID},
		noteExists: true,
	}
	svc := newFinanceFixture(enrollments, &fakePayments{}, &fakeStudents{}, &fakeGroups{})

	_, err := svc.RecordGrade(context.Background(), RecordGradeRequest{
		EnrollmentID: testEnrollmentID,
		Note:         "Final Exam",
		Value:        8.5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateGrade.Code, appErrors.FromError(err).Code)
}

func TestRecordGradeAppendsAndReturnsGrades(t *testing.T) {
	enrollments := &fakeEnrollments{
		enrollment: &models.Enrollment{ID: testEnrollmentID},
		detail: &models.EnrollmentDetail{
			Enrollment: models.Enrollment{ID: testEnrollmentID},
		},
		grades: []models.Grade{{Note: "Final Exam", Value: 8.5}},
	}
	svc := newFinanceFixture(enrollments, &fakePayments{}, &fakeStudents{}, &fakeGroups{})

	detail, err := svc.RecordGrade(context.Background(), RecordGradeRequest{
		EnrollmentID: testEnrollmentID,
		Note:         "Final Exam",
		Value:        8.5,
	})
	require.NoError(t, err)
	require.NotNil(t, enrollments.addedGrade)
	assert.Equal(t, "Final Exam", enrollments.addedGrade.Note)
	require.Len(t, detail.Grades, 1)
}

func TestGroupFinancialsUnknownGroup(t *testing.T) {
	svc := newFinanceFixture(&fakeEnrollments{}, &fakePayments{}, &fakeStudents{}, &fakeGroups{err: sql.ErrNoRows})

	_, err := svc.GroupFinancials(context.Background(), testGroupID)
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestDebtClampsAtZero(t *testing.T) {
	detail := models.EnrollmentDetail{
		Enrollment:  models.Enrollment{TotalPaid: 700},
		ProgramCost: 500,
	}
	assert.Equal(t, 0.0, detail.Debt())

	detail.TotalPaid = 200
	assert.Equal(t, 300.0, detail.Debt())
}
