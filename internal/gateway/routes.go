// ============================================================================
// internal/gateway/routes.go
// Chi router, middleware and route wiring
// ============================================================================

package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"closercollege/internal/admin"
	"closercollege/internal/auth"
	"closercollege/internal/certificate"
	"closercollege/internal/course"
	"closercollege/internal/enrollment"
	"closercollege/internal/gateway/handlers"
	"closercollege/internal/gateway/util"
	"closercollege/internal/progress"
	"closercollege/internal/shared"
)

// Services bundles everything the router needs.
type Services struct {
	Auth         *auth.Service
	Courses      *course.Service
	Enrollments  *enrollment.Service
	Syncer       *enrollment.Syncer
	Progress     *progress.Service
	Certificates *certificate.Service
	Admin        *admin.Service
}

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(config *shared.Config, svc *Services) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.CORS.AllowedOrigins,
		AllowedMethods:   config.CORS.AllowedMethods,
		AllowedHeaders:   config.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           config.CORS.MaxAge,
	}))

	// 2. Initialize Handlers
	authHandler := &handlers.AuthHandler{Auth: svc.Auth}
	courseHandler := &handlers.CourseHandler{Courses: svc.Courses}
	enrollmentHandler := &handlers.EnrollmentHandler{Enrollments: svc.Enrollments}
	progressHandler := &handlers.ProgressHandler{Progress: svc.Progress}
	certificateHandler := &handlers.CertificateHandler{Certificates: svc.Certificates}
	adminHandler := &handlers.AdminHandler{
		Admin:       svc.Admin,
		Enrollments: svc.Enrollments,
		Syncer:      svc.Syncer,
		Courses:     svc.Courses,
	}

	// 3. Define Routes (grouped by prefix)
	r.Route("/api", func(r chi.Router) {

		// --- Public Routes ---

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Course catalog is publicly viewable
		r.Get("/courses", courseHandler.ListCourses)
		r.Get("/courses/{id}", courseHandler.GetCourse)

		// Certificate verification for employers
		r.Get("/certificates/verify/{code}", certificateHandler.Verify)

		// --- Protected Routes (Require Valid Token) ---
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(svc.Auth))

			r.Get("/auth/validate", authHandler.Validate)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			// Enrollment (self-service)
			r.Route("/enrollment", func(r chi.Router) {
				r.Get("/", enrollmentHandler.ListMine)
				r.Post("/enroll", enrollmentHandler.Enroll)
			})

			// Progress tracking
			r.Route("/progress/{course_id}", func(r chi.Router) {
				r.Get("/", progressHandler.GetProgress)
				r.Post("/lesson", progressHandler.CompleteLesson)
				r.Post("/video", progressHandler.RecordVideoProgress)
				r.Post("/quiz", progressHandler.RecordQuizResult)
			})

			// Certificates
			r.Get("/certificates", certificateHandler.ListMine)

			// Admin Management
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/stats", adminHandler.GetStats)
				r.Get("/audit", adminHandler.ListAudit)
				r.Put("/courses", adminHandler.UpsertCourse)

				// Batch operations
				r.Post("/enrollment/bulk", adminHandler.BulkEnroll)
				r.Post("/sync", adminHandler.SyncAll)
				r.Post("/sync/{user_id}", adminHandler.SyncUser)

				// Overrides
				r.Route("/override", func(r chi.Router) {
					r.Post("/course/complete", adminHandler.MarkCourseComplete)
					r.Post("/course/reset", adminHandler.ResetCourseProgress)
					r.Post("/module/complete", adminHandler.MarkModuleComplete)
					r.Post("/module/reset", adminHandler.ResetModuleProgress)
					r.Post("/lesson/complete", adminHandler.MarkLessonComplete)
					r.Post("/lesson/reset", adminHandler.ResetLessonProgress)
					r.Post("/revoke", adminHandler.RevokeEnrollment)
				})
			})
		})
	})

	return r
}

// AuthMiddleware validates the bearer token and injects the account into
// the request context.
func AuthMiddleware(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			user, err := authService.Validate(ctx, tokenStr)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctxWithUser := context.WithValue(r.Context(), handlers.UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctxWithUser))
		})
	}
}

// RequireAdmin rejects requests from non-admin accounts. Must run after
// AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := handlers.CurrentUser(r)
		if user == nil || !user.IsAdmin() {
			util.WriteJSONError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
