package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/akranjan/facemark/internal/guard"
	"github.com/akranjan/facemark/internal/web/handlers"
	"github.com/akranjan/facemark/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(s.sessions)
	enrollHandler := handlers.NewEnrollHandler(s.client, &s.config.Programs)
	recognizeHandler := handlers.NewRecognizeHandler(s.client, s.reconciler, s.collector)
	studentsHandler := handlers.NewStudentsHandler(s.client)
	attendanceHandler := handlers.NewAttendanceHandler(s.client)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (always reachable, like the login view)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Enrollment (student-side view)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireView(s.sessions, guard.ViewRegister))
			r.Post("/students/register", enrollHandler.Enroll)
		})

		// Attendance capture and session history (professor dashboard)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireView(s.sessions, guard.ViewProfessorDashboard))
			r.Post("/recognize", recognizeHandler.Recognize)
			r.Get("/recognize/history", recognizeHandler.History)
			r.Delete("/recognize/history", recognizeHandler.ClearHistory)
		})

		// Professor-only test surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireView(s.sessions, guard.ViewTestRecognition))
			r.Post("/recognize/test", recognizeHandler.Test)
		})

		// Listings reachable by both roles
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireView(s.sessions, guard.ViewStudentsList))
			r.Get("/students", studentsHandler.List)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireView(s.sessions, guard.ViewAttendance))
			r.Get("/attendance", attendanceHandler.List)
		})
	})
}
