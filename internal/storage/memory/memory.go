// ============================================================================
// internal/storage/memory/memory.go
// In-memory storage backend. Implements storage.Store behind a mutex with
// copy-on-read/write semantics; used by unit tests and local experiments.
// ============================================================================

package memory

import (
	"context"
	"sort"
	"sync"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Store is a map-backed storage.Store. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	progress     map[string]*shared.CourseProgress
	enrollments  map[string]*shared.Enrollment
	courses      map[string]*shared.Course
	users        map[string]*shared.User
	sessions     map[string]*shared.Session
	audit        []shared.AuditRecord
	certificates map[string]*shared.Certificate
}

var _ storage.Store = (*Store)(nil)

// Open creates an empty in-memory store.
func Open() *Store {
	return &Store{
		progress:     make(map[string]*shared.CourseProgress),
		enrollments:  make(map[string]*shared.Enrollment),
		courses:      make(map[string]*shared.Course),
		users:        make(map[string]*shared.User),
		sessions:     make(map[string]*shared.Session),
		certificates: make(map[string]*shared.Certificate),
	}
}

// ============================================================================
// ProgressStore
// ============================================================================

func (s *Store) GetProgress(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[shared.PairKey(userID, courseID)]
	if !ok {
		return nil, shared.NewNotFound("course progress", shared.PairKey(userID, courseID))
	}
	return cloneProgress(p), nil
}

func (s *Store) InsertProgress(ctx context.Context, p *shared.CourseProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.progress[p.ID]; ok {
		return shared.NewConflict("course progress", p.ID, "")
	}
	cp := cloneProgress(p)
	cp.Version = 1
	s.progress[p.ID] = cp
	p.Version = 1
	return nil
}

func (s *Store) UpdateProgress(ctx context.Context, p *shared.CourseProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.progress[p.ID]
	if !ok {
		return shared.NewNotFound("course progress", p.ID)
	}
	if existing.Version != p.Version {
		return shared.NewConflict("course progress", p.ID, "version mismatch")
	}
	cp := cloneProgress(p)
	cp.Version = p.Version + 1
	s.progress[p.ID] = cp
	p.Version = cp.Version
	return nil
}

func (s *Store) DeleteProgress(ctx context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.progress, shared.PairKey(userID, courseID))
	return nil
}

// ============================================================================
// EnrollmentStore
// ============================================================================

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.enrollments[shared.PairKey(userID, courseID)]
	if !ok {
		return nil, shared.NewNotFound("enrollment", shared.PairKey(userID, courseID))
	}
	return cloneEnrollment(e), nil
}

func (s *Store) InsertEnrollment(ctx context.Context, e *shared.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.enrollments[e.ID]; ok {
		return shared.NewConflict("enrollment", e.ID, "")
	}
	s.enrollments[e.ID] = cloneEnrollment(e)
	return nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *shared.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.enrollments[e.ID]; !ok {
		return shared.NewNotFound("enrollment", e.ID)
	}
	s.enrollments[e.ID] = cloneEnrollment(e)
	return nil
}

func (s *Store) ListEnrollments(ctx context.Context, f storage.EnrollmentFilter) ([]shared.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []shared.Enrollment
	for _, e := range s.enrollments {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.CourseID != "" && e.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		result = append(result, *cloneEnrollment(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ============================================================================
// CourseStore
// ============================================================================

func (s *Store) GetCourse(ctx context.Context, courseID string) (*shared.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[courseID]
	if !ok {
		return nil, shared.NewNotFound("course", courseID)
	}
	cc := *c
	return &cc, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]shared.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]shared.Course, 0, len(s.courses))
	for _, c := range s.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpsertCourse(ctx context.Context, c *shared.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cc := *c
	s.courses[c.ID] = &cc
	return nil
}

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) GetUser(ctx context.Context, userID string) (*shared.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, shared.NewNotFound("user", userID)
	}
	uu := *u
	return &uu, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			uu := *u
			return &uu, nil
		}
	}
	return nil, shared.NewNotFound("user", email)
}

func (s *Store) UpsertUser(ctx context.Context, u *shared.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uu := *u
	s.users[u.ID] = &uu
	return nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, u := range s.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// ============================================================================
// SessionStore
// ============================================================================

func (s *Store) InsertSession(ctx context.Context, sess *shared.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := *sess
	s.sessions[sess.ID] = &ss
	return nil
}

func (s *Store) CountSessionsByToken(ctx context.Context, token string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, sess := range s.sessions {
		if sess.Token == token {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteSessionsByToken(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, sess := range s.sessions {
		if sess.Token == token {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) DeleteSessionsByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// ============================================================================
// AuditStore
// ============================================================================

func (s *Store) AppendAudit(ctx context.Context, rec *shared.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, *rec)
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int64) ([]shared.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first
	result := make([]shared.AuditRecord, len(s.audit))
	copy(result, s.audit)
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ============================================================================
// CertificateStore
// ============================================================================

func (s *Store) InsertCertificate(ctx context.Context, c *shared.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.certificates {
		if existing.UserID == c.UserID && existing.CourseID == c.CourseID {
			return shared.NewConflict("certificate", c.ID, "already issued for pair")
		}
	}
	cc := *c
	s.certificates[c.ID] = &cc
	return nil
}

func (s *Store) FindCertificate(ctx context.Context, userID, courseID string) (*shared.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			cc := *c
			return &cc, nil
		}
	}
	return nil, shared.NewNotFound("certificate", shared.PairKey(userID, courseID))
}

func (s *Store) FindCertificateByCode(ctx context.Context, code string) (*shared.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.certificates {
		if c.VerificationCode == code {
			cc := *c
			return &cc, nil
		}
	}
	return nil, shared.NewNotFound("certificate", code)
}

func (s *Store) ListCertificatesByUser(ctx context.Context, userID string) ([]shared.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []shared.Certificate
	for _, c := range s.certificates {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IssuedAt.Before(result[j].IssuedAt) })
	return result, nil
}

// ============================================================================
// Cross-collection operations
// ============================================================================

func (s *Store) RevokeEnrollment(ctx context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shared.PairKey(userID, courseID)
	e, ok := s.enrollments[key]
	if !ok {
		return shared.NewNotFound("enrollment", key)
	}
	e.Status = shared.StatusRevoked
	e.Progress = 0
	e.CompletedLessons = nil
	delete(s.progress, key)
	return nil
}

// ============================================================================
// Clone helpers (keep callers from aliasing stored documents)
// ============================================================================

func cloneProgress(p *shared.CourseProgress) *shared.CourseProgress {
	cp := *p
	cp.CompletedLessons = append([]string(nil), p.CompletedLessons...)
	cp.CompletedModules = append([]string(nil), p.CompletedModules...)
	if p.LessonProgress != nil {
		cp.LessonProgress = make(map[string]shared.LessonProgress, len(p.LessonProgress))
		for k, v := range p.LessonProgress {
			cp.LessonProgress[k] = v
		}
	}
	if p.LastPosition != nil {
		pos := *p.LastPosition
		cp.LastPosition = &pos
	}
	if p.CompletedDate != nil {
		d := *p.CompletedDate
		cp.CompletedDate = &d
	}
	return &cp
}

func cloneEnrollment(e *shared.Enrollment) *shared.Enrollment {
	ce := *e
	ce.CompletedLessons = append([]string(nil), e.CompletedLessons...)
	return &ce
}
