package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/nlp"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory repository fakes. They mirror the storage semantics the Postgres
// implementations rely on: pgx.ErrNoRows for missing rows, duplicate errors
// for unique violations, COALESCE behavior for the override audit column.

type fakeUserRepo struct {
	users map[string]*domain.User
	err   error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	if user.ID == "" {
		user.ID = "u" + strconv.Itoa(len(f.users)+1)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListActiveAdminsByDivision(_ context.Context, division domain.Division) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.User
	for _, user := range f.users {
		if user.Role == domain.RoleAdmin && user.Division == division && user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListActiveSuperAdmins(_ context.Context) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.User
	for _, user := range f.users {
		if user.Role == domain.RoleSuperAdmin && user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	tickets   map[string]*domain.Ticket
	createErr error
	seq       int
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, ticket := range tickets {
		repo.tickets[ticket.ID] = ticket
	}
	return repo
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	ticket.ID = "t" + strconv.Itoa(f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) ApplyOverride(_ context.Context, id string, newDivision domain.Division, reason *string, actorID string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if ticket.OriginalNLPDivision == nil {
		previous := ticket.TargetDivision
		ticket.OriginalNLPDivision = &previous
	}
	now := time.Now()
	ticket.TargetDivision = newDivision
	ticket.IsNLPOverridden = true
	ticket.OverrideReason = reason
	ticket.OverriddenBy = &actorID
	ticket.OverriddenAt = &now
	ticket.UpdatedAt = now
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListByRequester(_ context.Context, userID string, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.RequesterID == userID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByDivision(_ context.Context, division domain.Division, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.UserDivision == division {
			out = append(out, *ticket)
			continue
		}
		for _, target := range ticket.TargetDivisions {
			if target == division {
				out = append(out, *ticket)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) CountByStatus(_ context.Context, division *domain.Division) (map[domain.TicketStatus]int, error) {
	counts := map[domain.TicketStatus]int{}
	for _, ticket := range f.tickets {
		if division != nil && ticket.UserDivision != *division {
			in := false
			for _, target := range ticket.TargetDivisions {
				if target == *division {
					in = true
					break
				}
			}
			if !in {
				continue
			}
		}
		counts[ticket.Status]++
	}
	return counts, nil
}

type fakeNotificationRepo struct {
	notifications []*domain.Notification
	failFor       map[string]error
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failFor: map[string]error{}}
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if err := f.failFor[notification.RecipientID]; err != nil {
		return err
	}
	for _, existing := range f.notifications {
		if existing.RecipientID == notification.RecipientID && existing.TicketID == notification.TicketID {
			return repository.ErrDuplicateNotification
		}
	}
	f.seq++
	notification.ID = "n" + strconv.Itoa(f.seq)
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, notification)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, recipientID, notificationID string) error {
	for _, n := range f.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	var updated int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

type fakeMappingRepo struct {
	mappings []*domain.CategoryDivisionMapping
	seq      int64
}

func (f *fakeMappingRepo) Insert(_ context.Context, mapping *domain.CategoryDivisionMapping) error {
	for _, existing := range f.mappings {
		if existing.NLPCategory == mapping.NLPCategory && existing.TargetDivision == mapping.TargetDivision {
			return repository.ErrDuplicateMapping
		}
	}
	f.seq++
	mapping.ID = f.seq
	mapping.CreatedAt = time.Now()
	mapping.UpdatedAt = mapping.CreatedAt
	f.mappings = append(f.mappings, mapping)
	return nil
}

func (f *fakeMappingRepo) SetActive(_ context.Context, id int64, active bool) (*domain.CategoryDivisionMapping, error) {
	for _, existing := range f.mappings {
		if existing.ID == id {
			existing.Active = active
			existing.UpdatedAt = time.Now()
			copied := *existing
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeMappingRepo) List(_ context.Context) ([]domain.CategoryDivisionMapping, error) {
	out := make([]domain.CategoryDivisionMapping, 0, len(f.mappings))
	for _, mapping := range f.mappings {
		out = append(out, *mapping)
	}
	return out, nil
}

func (f *fakeMappingRepo) ListActiveDivisionsByCategory(_ context.Context, category string) ([]domain.Division, error) {
	var out []domain.Division
	for _, mapping := range f.mappings {
		if mapping.NLPCategory == category && mapping.Active {
			out = append(out, mapping.TargetDivision)
		}
	}
	return out, nil
}

type fakeClassifier struct {
	result *nlp.Result
	err    error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (*nlp.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordingInvalidator struct {
	categories []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, category string) {
	r.categories = append(r.categories, category)
}

var errBoom = errors.New("boom")
