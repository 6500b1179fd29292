package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/hrstack/payroll-backend-go/internal/config"
	appHTTP "github.com/hrstack/payroll-backend-go/internal/handler/http"
	"github.com/hrstack/payroll-backend-go/internal/pkg/cron"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/hrstack/payroll-backend-go/internal/pkg/email"
	"github.com/hrstack/payroll-backend-go/internal/pkg/jwt"
	"github.com/hrstack/payroll-backend-go/internal/pkg/sse"
	"github.com/hrstack/payroll-backend-go/internal/repository/postgresql"
	notificationService "github.com/hrstack/payroll-backend-go/internal/service/notification"
	payrollService "github.com/hrstack/payroll-backend-go/internal/service/payroll"
	salaryService "github.com/hrstack/payroll-backend-go/internal/service/salary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	payrollRepo := postgresql.NewPayrollRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	sseHub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(notificationRepo, sseHub, notificationService.Config{})
	defer notificationSvc.Stop()

	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		employeeRepo,
		attendanceRepo,
		companyRepo,
		notificationSvc,
		emailService,
		cfg.App.FrontendURL,
	)
	salarySvc := salaryService.NewSalaryService(db, salaryRepo, employeeRepo)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollRepo, companyRepo, notificationSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	salaryHandler := appHTTP.NewSalaryHandler(salarySvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, jwtService)

	router := appHTTP.NewRouter(cfg, jwtService, payrollHandler, salaryHandler, notificationHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
