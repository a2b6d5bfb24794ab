// ============================================================================
// cmd/seeder/main.go
// Development database seeder: demo accounts, courses and enrollments
// ============================================================================

package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"closercollege/internal/shared"
	"closercollege/internal/storage/mongodb"
)

const (
	// User IDs
	AdminID    = "admin-001"
	LearnerID1 = "learner-001" // Maria Santos, learner@example.com
	LearnerID2 = "learner-002" // James Cruz, learner2@example.com
	LearnerID3 = "learner-003" // Ana Reyes, learner3@example.com

	// Common Credentials
	CommonPassword = "password"

	// Course IDs
	SalesCourseID   = "course-consultative-selling"
	ServiceCourseID = "course-customer-service"
)

func main() {
	log.Println("Starting Database Seeder...")

	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := shared.LoadConfig("seeder")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	store := mongodb.New(client, db)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(CommonPassword), cfg.Security.BCryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	seedUsers(ctx, store, string(hash))
	seedCourses(ctx, store)
	seedEnrollments(ctx, store)

	log.Println("Seeding complete.")
}

func seedUsers(ctx context.Context, store *mongodb.Store, passwordHash string) {
	now := time.Now()
	users := []shared.User{
		{ID: AdminID, Email: "admin@closercollege.com", Name: "Platform Admin", Role: shared.RoleAdmin, PasswordHash: passwordHash, IsActive: true, CreatedAt: now},
		{ID: LearnerID1, Email: "learner@example.com", Name: "Maria Santos", Role: shared.RoleLearner, CompanyID: "company-acme", PasswordHash: passwordHash, IsActive: true, CreatedAt: now},
		{ID: LearnerID2, Email: "learner2@example.com", Name: "James Cruz", Role: shared.RoleLearner, CompanyID: "company-acme", PasswordHash: passwordHash, IsActive: true, CreatedAt: now},
		{ID: LearnerID3, Email: "learner3@example.com", Name: "Ana Reyes", Role: shared.RoleLearner, PasswordHash: passwordHash, IsActive: true, CreatedAt: now},
	}
	for i := range users {
		if err := store.UpsertUser(ctx, &users[i]); err != nil {
			log.Fatalf("Failed to seed user %s: %v", users[i].ID, err)
		}
	}
	log.Printf("Seeded %d users", len(users))
}

func seedCourses(ctx context.Context, store *mongodb.Store) {
	now := time.Now()
	courses := []shared.Course{
		{
			ID:          SalesCourseID,
			Name:        "Consultative Selling Fundamentals",
			Description: "Needs-based selling for account executives.",
			IsPublished: true,
			CreatedAt:   now,
			Modules: []shared.Module{
				{
					ID: "m1", Title: "Foundations", Order: 1,
					Lessons: []shared.Lesson{
						{ID: "l1", Title: "The Buyer's Journey", Type: shared.LessonTypeVideo, Order: 1, Duration: 480},
						{ID: "l2", Title: "Foundations Check", Type: shared.LessonTypeQuiz, Order: 2},
					},
				},
				{
					ID: "m2", Title: "Discovery Calls", Order: 2,
					Lessons: []shared.Lesson{
						{ID: "l1", Title: "Open Questions", Type: shared.LessonTypeVideo, Order: 1, Duration: 600},
						{ID: "l2", Title: "Discovery Practice", Type: shared.LessonTypeQuiz, Order: 2},
					},
				},
			},
		},
		{
			ID:          ServiceCourseID,
			Name:        "Customer Service Excellence",
			Description: "Handling difficult conversations and retention.",
			IsPublished: true,
			CreatedAt:   now,
			Modules: []shared.Module{
				{
					ID: "m1", Title: "Service Mindset", Order: 1,
					Lessons: []shared.Lesson{
						{ID: "l1", Title: "First Response", Type: shared.LessonTypeVideo, Order: 1, Duration: 360},
						{ID: "l2", Title: "De-escalation", Type: shared.LessonTypeText, Order: 2},
						{ID: "l3", Title: "Mindset Quiz", Type: shared.LessonTypeQuiz, Order: 3},
					},
				},
			},
		},
	}
	for i := range courses {
		if err := store.UpsertCourse(ctx, &courses[i]); err != nil {
			log.Fatalf("Failed to seed course %s: %v", courses[i].ID, err)
		}
	}
	log.Printf("Seeded %d courses", len(courses))
}

func seedEnrollments(ctx context.Context, store *mongodb.Store) {
	now := time.Now()
	pairs := []struct {
		userID, courseID, courseName string
	}{
		{LearnerID1, SalesCourseID, "Consultative Selling Fundamentals"},
		{LearnerID2, SalesCourseID, "Consultative Selling Fundamentals"},
		{LearnerID1, ServiceCourseID, "Customer Service Excellence"},
	}
	for _, p := range pairs {
		e := &shared.Enrollment{
			ID:               shared.PairKey(p.userID, p.courseID),
			UserID:           p.userID,
			CourseID:         p.courseID,
			CourseName:       p.courseName,
			Status:           shared.StatusActive,
			CompletedLessons: []string{},
			EnrolledAt:       now,
		}
		if err := store.InsertEnrollment(ctx, e); err != nil && !shared.IsConflict(err) {
			log.Fatalf("Failed to seed enrollment %s: %v", e.ID, err)
		}
	}
	log.Printf("Seeded %d enrollments", len(pairs))
}
