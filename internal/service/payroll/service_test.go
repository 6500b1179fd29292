package payroll

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrstack/payroll-backend-go/internal/config"
	"github.com/hrstack/payroll-backend-go/internal/domain/attendance"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/hrstack/payroll-backend-go/internal/pkg/email"
	"github.com/hrstack/payroll-backend-go/internal/pkg/sse"
	"github.com/hrstack/payroll-backend-go/internal/repository/postgresql"
	notificationService "github.com/hrstack/payroll-backend-go/internal/service/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DB

// testInit connects to the test database, or skips the test when none is
// configured. The schema must already be loaded.
func testInit(t *testing.T) {
	t.Helper()
	if testDB != nil {
		return
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	var err error
	testDB, err = database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")
}

func truncatePayrollTables(t *testing.T, ctx context.Context) {
	t.Helper()
	tables := []string{
		"notifications", "payroll_items", "payroll_runs", "attendance_logs",
		"holidays", "salary_structures", "employees", "users", "companies",
	}
	for _, table := range tables {
		_, err := testDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			continue
		}
	}
}

func createTestCompany(t *testing.T, ctx context.Context) string {
	t.Helper()
	var companyID string
	username := fmt.Sprintf("acme-%d", time.Now().UnixNano())
	err := testDB.QueryRow(ctx, `
		INSERT INTO companies (id, name, username, created_at, updated_at)
		VALUES (gen_random_uuid(), 'Acme Corp', $1, NOW(), NOW())
		RETURNING id
	`, username).Scan(&companyID)
	require.NoError(t, err)
	return companyID
}

func createTestUser(t *testing.T, ctx context.Context, companyID string, isAdmin bool) string {
	t.Helper()
	var userID string
	emailAddr := fmt.Sprintf("user-%d@acme.test", time.Now().UnixNano())
	err := testDB.QueryRow(ctx, `
		INSERT INTO users (id, company_id, email, is_admin, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW(), NOW())
		RETURNING id
	`, companyID, emailAddr, isAdmin).Scan(&userID)
	require.NoError(t, err)
	return userID
}

func createTestEmployee(t *testing.T, ctx context.Context, companyID, userID string) string {
	t.Helper()
	var employeeID string
	code := fmt.Sprintf("EMP-%d", time.Now().UnixNano())
	err := testDB.QueryRow(ctx, `
		INSERT INTO employees (id, user_id, company_id, employee_code, full_name, employment_status, hire_date, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, 'Test Employee', 'active', '2023-01-01', NOW(), NOW())
		RETURNING id
	`, userID, companyID, code).Scan(&employeeID)
	require.NoError(t, err)
	return employeeID
}

func createTestSalary(t *testing.T, ctx context.Context, employeeID, companyID string) {
	t.Helper()
	s := salary.SalaryStructure{
		EmployeeID:       employeeID,
		CompanyID:        companyID,
		BasicSalary:      decimal.NewFromInt(30000),
		HRA:              decimal.NewFromInt(12000),
		DA:               decimal.NewFromInt(3000),
		TA:               decimal.NewFromInt(2000),
		SpecialAllowance: decimal.NewFromInt(3000),
		PF:               decimal.NewFromInt(1800),
		ProfessionalTax:  decimal.NewFromInt(200),
		TDS:              decimal.NewFromInt(2500),
		EffectiveFrom:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Recompute()

	_, err := postgresql.NewSalaryRepository(testDB).Upsert(ctx, s)
	require.NoError(t, err)
}

func markAttendance(t *testing.T, ctx context.Context, employeeID, companyID string, day time.Time, status attendance.Status) {
	t.Helper()
	_, err := testDB.Exec(ctx, `
		INSERT INTO attendance_logs (id, employee_id, company_id, date, status, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (employee_id, date) DO UPDATE SET status = EXCLUDED.status
	`, employeeID, companyID, day, status)
	require.NoError(t, err)
}

// claimsContext builds a request context carrying verified JWT claims the way
// the auth middleware does.
func claimsContext(t *testing.T, companyID, userID string, isAdmin bool) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"company_id": companyID,
		"user_id":    userID,
		"is_admin":   isAdmin,
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func newTestPayrollService(t *testing.T) payroll.PayrollService {
	t.Helper()
	notifSvc := notificationService.NewNotificationService(
		postgresql.NewNotificationRepository(testDB), sse.NewHub(), notificationService.Config{})
	t.Cleanup(notifSvc.Stop)

	emailSvc, err := email.NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)

	return NewPayrollService(
		testDB,
		postgresql.NewPayrollRepository(testDB),
		postgresql.NewEmployeeRepository(testDB),
		postgresql.NewAttendanceRepository(testDB),
		postgresql.NewCompanyRepository(testDB),
		notifSvc,
		emailSvc,
		"http://localhost:3000",
	)
}

func TestPayrollService_GenerateAndLifecycle(t *testing.T) {
	ctx := context.Background()
	testInit(t)
	truncatePayrollTables(t, ctx)

	companyID := createTestCompany(t, ctx)
	adminID := createTestUser(t, ctx, companyID, true)
	userID := createTestUser(t, ctx, companyID, false)
	employeeID := createTestEmployee(t, ctx, companyID, userID)
	createTestSalary(t, ctx, employeeID, companyID)

	// Full attendance for January 2024 (23 working days, Mon-Fri).
	start, end := PeriodBounds(1, 2024)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		markAttendance(t, ctx, employeeID, companyID, day, attendance.StatusPresent)
	}

	svc := newTestPayrollService(t)
	adminCtx := claimsContext(t, companyID, adminID, true)

	// Generate
	run, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.RunStatusDraft), run.Status)
	assert.Equal(t, 1, run.TotalEmployees)
	assert.True(t, run.TotalGross.Equal(decimal.NewFromInt(50000)), "got %s", run.TotalGross)
	assert.True(t, run.TotalNet.Equal(decimal.NewFromInt(45500)), "got %s", run.TotalNet)

	// Regeneration of a draft run replaces it, it does not duplicate.
	again, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024})
	require.NoError(t, err)
	assert.Equal(t, run.ID, again.ID)
	assert.True(t, again.TotalNet.Equal(run.TotalNet))

	items, err := svc.GetRunItems(adminCtx, run.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Adjust the item: aggregates must follow.
	bonus := decimal.NewFromInt(5000)
	updated, err := svc.UpdateItem(adminCtx, payroll.UpdatePayrollItemRequest{ID: items[0].ID, Bonus: &bonus})
	require.NoError(t, err)
	assert.True(t, updated.NetSalary.Equal(decimal.NewFromInt(50500)))

	afterUpdate, err := svc.GetRun(adminCtx, run.ID)
	require.NoError(t, err)
	assert.True(t, afterUpdate.TotalNet.Equal(decimal.NewFromInt(50500)))

	// Applying the same update twice changes nothing.
	updatedTwice, err := svc.UpdateItem(adminCtx, payroll.UpdatePayrollItemRequest{ID: items[0].ID, Bonus: &bonus})
	require.NoError(t, err)
	assert.True(t, updatedTwice.NetSalary.Equal(updated.NetSalary))

	// Lifecycle: draft -> processing -> completed -> paid.
	processed, err := svc.Process(adminCtx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.RunStatusProcessing), processed.Status)
	assert.NotNil(t, processed.ProcessedAt)

	// Items are frozen once processing starts.
	_, err = svc.UpdateItem(adminCtx, payroll.UpdatePayrollItemRequest{ID: items[0].ID, Bonus: &bonus})
	assert.ErrorIs(t, err, payroll.ErrItemNotEditable)

	// Regeneration is refused too.
	_, err = svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024})
	assert.ErrorIs(t, err, payroll.ErrRunNotEditable)

	// Skipping a state is rejected.
	_, err = svc.MarkPaid(adminCtx, run.ID, payroll.MarkPaidRequest{})
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)

	completed, err := svc.Complete(adminCtx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.RunStatusCompleted), completed.Status)

	paid, err := svc.MarkPaid(adminCtx, run.ID, payroll.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.RunStatusPaid), paid.Status)
	assert.NotNil(t, paid.PaidAt)

	// Paid is terminal.
	_, err = svc.Process(adminCtx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
}

func TestPayrollService_Payslips(t *testing.T) {
	ctx := context.Background()
	testInit(t)
	truncatePayrollTables(t, ctx)

	companyID := createTestCompany(t, ctx)
	adminID := createTestUser(t, ctx, companyID, true)
	userID := createTestUser(t, ctx, companyID, false)
	employeeID := createTestEmployee(t, ctx, companyID, userID)
	createTestSalary(t, ctx, employeeID, companyID)

	otherUserID := createTestUser(t, ctx, companyID, false)
	otherEmployeeID := createTestEmployee(t, ctx, companyID, otherUserID)
	createTestSalary(t, ctx, otherEmployeeID, companyID)

	svc := newTestPayrollService(t)
	adminCtx := claimsContext(t, companyID, adminID, true)

	run, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 2, PeriodYear: 2024})
	require.NoError(t, err)

	// Draft runs have no payslips yet.
	slips, err := svc.ListEmployeePayslips(adminCtx, employeeID)
	require.NoError(t, err)
	assert.Empty(t, slips)

	// The single-payslip lookup refuses draft figures too, for everyone.
	employeeCtx := claimsContext(t, companyID, userID, false)
	_, err = svc.GetPayslip(employeeCtx, run.ID, employeeID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotAvailable)
	_, err = svc.GetPayslip(adminCtx, run.ID, employeeID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotAvailable)

	_, err = svc.Process(adminCtx, run.ID)
	require.NoError(t, err)

	// Still withheld while the run is processing.
	_, err = svc.GetPayslip(employeeCtx, run.ID, employeeID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotAvailable)

	_, err = svc.Complete(adminCtx, run.ID)
	require.NoError(t, err)

	// Employees see their own payslip.
	slip, err := svc.GetPayslip(employeeCtx, run.ID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", slip.CompanyName)
	assert.Equal(t, 2, slip.PeriodMonth)
	assert.Equal(t, string(payroll.RunStatusCompleted), slip.RunStatus)

	// But not anyone else's.
	_, err = svc.GetPayslip(employeeCtx, run.ID, otherEmployeeID)
	assert.ErrorIs(t, err, payroll.ErrPayslipForbidden)

	_, err = svc.ListEmployeePayslips(employeeCtx, otherEmployeeID)
	assert.ErrorIs(t, err, payroll.ErrPayslipForbidden)

	// Admins see everything.
	all, err := svc.ListEmployeePayslips(adminCtx, employeeID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPayrollService_GenerateWithApprovedLeave(t *testing.T) {
	ctx := context.Background()
	testInit(t)
	truncatePayrollTables(t, ctx)

	companyID := createTestCompany(t, ctx)
	adminID := createTestUser(t, ctx, companyID, true)
	userID := createTestUser(t, ctx, companyID, false)
	employeeID := createTestEmployee(t, ctx, companyID, userID)
	createTestSalary(t, ctx, employeeID, companyID)

	// Present every working day of January 2024, including the three days a
	// leave approval will overwrite afterwards.
	start, end := PeriodBounds(1, 2024)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		markAttendance(t, ctx, employeeID, companyID, day, attendance.StatusPresent)
	}

	// Leave approval writes through the bulk upsert, flipping Mon-Wed
	// Jan 8-10 from present to on_leave in place.
	leaveDays := []time.Time{
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	attendanceRepo := postgresql.NewAttendanceRepository(testDB)
	require.NoError(t, attendanceRepo.BulkUpsertOnLeave(ctx, employeeID, companyID, leaveDays))

	svc := newTestPayrollService(t)
	adminCtx := claimsContext(t, companyID, adminID, true)

	run, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024})
	require.NoError(t, err)

	items, err := svc.GetRunItems(adminCtx, run.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Paid leave counts as effective working time: full pay, no LOP.
	item := items[0]
	assert.Equal(t, 23, item.TotalWorkingDays)
	assert.True(t, item.DaysPresent.Equal(decimal.NewFromInt(20)), "got %s", item.DaysPresent)
	assert.True(t, item.PaidLeaveDays.Equal(decimal.NewFromInt(3)), "got %s", item.PaidLeaveDays)
	assert.True(t, item.LopDays.IsZero(), "got %s", item.LopDays)
	assert.True(t, item.NetSalary.Equal(decimal.NewFromInt(45500)), "got %s", item.NetSalary)

	// Re-approving the same range is an in-place update, not a duplicate row.
	require.NoError(t, attendanceRepo.BulkUpsertOnLeave(ctx, employeeID, companyID, leaveDays))
	again, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024})
	require.NoError(t, err)
	assert.True(t, again.TotalNet.Equal(run.TotalNet))
}

func TestPayrollService_RegenerateLosesToConcurrentProcess(t *testing.T) {
	ctx := context.Background()
	testInit(t)
	truncatePayrollTables(t, ctx)

	companyID := createTestCompany(t, ctx)
	adminID := createTestUser(t, ctx, companyID, true)
	userID := createTestUser(t, ctx, companyID, false)
	employeeID := createTestEmployee(t, ctx, companyID, userID)
	createTestSalary(t, ctx, employeeID, companyID)

	svc := newTestPayrollService(t)
	adminCtx := claimsContext(t, companyID, adminID, true)

	run, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 3, PeriodYear: 2024})
	require.NoError(t, err)

	// Hold the run row in an uncommitted transaction that flips it to
	// processing, as a racing Process call would.
	tx, err := testDB.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `UPDATE payroll_runs SET status = 'processing' WHERE id = $1`, run.ID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(adminCtx, payroll.GeneratePayrollRequest{PeriodMonth: 3, PeriodYear: 2024})
		done <- err
	}()

	// Give the regeneration time to pass its unlocked draft check and block
	// on the row lock, then commit the status flip. Whichever side of the
	// lock the regeneration lands on, it must refuse.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, <-done, payroll.ErrRunNotEditable)

	// The processing run kept its items.
	var itemCount int
	require.NoError(t, testDB.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_items WHERE payroll_run_id = $1`, run.ID).Scan(&itemCount))
	assert.Equal(t, 1, itemCount)
}
