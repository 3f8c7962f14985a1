package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/nlp"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/routing"
)

type ticketFixture struct {
	service       *TicketService
	tickets       *fakeTicketRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	classifier    *fakeClassifier
	mappings      *fakeMappingRepo
}

func newTicketFixture(t *testing.T, classifier *fakeClassifier, accounts ...*domain.User) *ticketFixture {
	t.Helper()
	logger := zap.NewNop()

	users := newFakeUserRepo(accounts...)
	tickets := newFakeTicketRepo()
	notificationRepo := newFakeNotificationRepo()
	mappings := &fakeMappingRepo{}

	resolver := routing.NewResolver(mappings, users, domain.DivisionIT, logger)
	notifications := NewNotificationService(notificationRepo, events.NewInMemoryDispatcher(), observability.NewMetrics(), logger)

	service := NewTicketService(TicketDependencies{
		TicketRepo:      tickets,
		UserRepo:        users,
		Classifier:      classifier,
		Resolver:        resolver,
		Notifications:   notifications,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          logger,
		DefaultCategory: "General",
	})
	return &ticketFixture{
		service:       service,
		tickets:       tickets,
		users:         users,
		notifications: notificationRepo,
		classifier:    classifier,
		mappings:      mappings,
	}
}

func submitter(id string, division domain.Division) *domain.User {
	return &domain.User{ID: id, Name: "user " + id, Email: id + "@example.com", Role: domain.RoleUser, Division: division, Active: true}
}

func adminUser(id string, division domain.Division) *domain.User {
	return &domain.User{ID: id, Name: "admin " + id, Email: id + "@example.com", Role: domain.RoleAdmin, Division: division, Active: true}
}

func TestCreateTicket_ClassifiesAndRoutes(t *testing.T) {
	classifier := &fakeClassifier{result: &nlp.Result{Category: "IT", Confidence: 0.92, Keywords: []string{"wifi"}}}
	fx := newTicketFixture(t, classifier,
		submitter("u1", domain.DivisionSales),
		adminUser("a1", domain.DivisionIT),
	)
	fx.mappings.mappings = append(fx.mappings.mappings, &domain.CategoryDivisionMapping{
		ID: 1, NLPCategory: "IT", TargetDivision: domain.DivisionIT, Active: true,
	})

	ticket, dispatched, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "wifi down",
		Description: "cannot connect in the sales area",
	})
	require.NoError(t, err)

	assert.Equal(t, "IT", ticket.Category)
	assert.Equal(t, 0.92, ticket.NLPConfidence)
	assert.Equal(t, domain.DivisionSales, ticket.UserDivision)
	assert.Equal(t, domain.DivisionIT, ticket.TargetDivision)
	assert.Equal(t, []domain.Division{domain.DivisionSales, domain.DivisionIT}, ticket.TargetDivisions)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.NotEmpty(t, ticket.ExternalKey)

	assert.Equal(t, 1, dispatched.Created)
	require.Len(t, fx.notifications.notifications, 1)
	assert.Equal(t, "a1", fx.notifications.notifications[0].RecipientID)
	assert.Equal(t, domain.ReasonNLPCategory, fx.notifications.notifications[0].Reason)
}

func TestCreateTicket_ClassifierDownFallsBackToDefault(t *testing.T) {
	classifier := &fakeClassifier{err: nlp.ErrUnavailable}
	fx := newTicketFixture(t, classifier, submitter("u1", domain.DivisionHR))

	ticket, _, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "broken chair",
		Description: "the chair in my office broke",
	})
	require.NoError(t, err, "classifier outage must not fail ticket creation")

	assert.Equal(t, "General", ticket.Category)
	assert.Zero(t, ticket.NLPConfidence)
	assert.Empty(t, ticket.NLPKeywords)
	// No mapping for General: fallback division is appended after the
	// submitter's own.
	assert.Equal(t, []domain.Division{domain.DivisionHR, domain.DivisionIT}, ticket.TargetDivisions)
}

func TestCreateTicket_EmptyCategoryUsesDefault(t *testing.T) {
	classifier := &fakeClassifier{result: &nlp.Result{Category: "", Confidence: 0.1}}
	fx := newTicketFixture(t, classifier, submitter("u1", domain.DivisionHR))

	ticket, _, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "something",
		Description: "something odd",
	})
	require.NoError(t, err)
	assert.Equal(t, "General", ticket.Category)
}

func TestCreateTicket_UnknownSubmitter(t *testing.T) {
	fx := newTicketFixture(t, &fakeClassifier{result: &nlp.Result{Category: "IT"}})

	_, _, err := fx.service.CreateTicket(context.Background(), "ghost", TicketCreateInput{
		Title:       "x",
		Description: "y",
	})
	require.Error(t, err)
	assert.Empty(t, fx.tickets.tickets)
}

func TestCreateTicket_NotificationFailureDoesNotFailCreation(t *testing.T) {
	classifier := &fakeClassifier{result: &nlp.Result{Category: "IT", Confidence: 0.8}}
	fx := newTicketFixture(t, classifier,
		submitter("u1", domain.DivisionSales),
		adminUser("a1", domain.DivisionSales),
	)
	fx.notifications.failFor["a1"] = errBoom

	ticket, dispatched, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "wifi down",
		Description: "no network",
	})
	require.NoError(t, err, "dispatch failure must not fail ticket creation")
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, 0, dispatched.Created)
	assert.Equal(t, []string{"a1"}, dispatched.Failed)
}

func TestGetTicket_Visibility(t *testing.T) {
	classifier := &fakeClassifier{result: &nlp.Result{Category: "IT", Confidence: 0.8}}
	owner := submitter("u1", domain.DivisionSales)
	stranger := submitter("u2", domain.DivisionHR)
	itAdmin := adminUser("a1", domain.DivisionIT)
	hrAdmin := adminUser("a2", domain.DivisionHR)
	fx := newTicketFixture(t, classifier, owner, stranger, itAdmin, hrAdmin)
	fx.mappings.mappings = append(fx.mappings.mappings, &domain.CategoryDivisionMapping{
		ID: 1, NLPCategory: "IT", TargetDivision: domain.DivisionIT, Active: true,
	})

	created, _, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "wifi",
		Description: "down",
	})
	require.NoError(t, err)

	_, err = fx.service.GetTicket(context.Background(), owner, created.ID)
	assert.NoError(t, err, "owner sees own ticket")

	_, err = fx.service.GetTicket(context.Background(), itAdmin, created.ID)
	assert.NoError(t, err, "admin of a target division sees the ticket")

	_, err = fx.service.GetTicket(context.Background(), stranger, created.ID)
	assert.Error(t, err, "unrelated user is denied")

	_, err = fx.service.GetTicket(context.Background(), hrAdmin, created.ID)
	assert.Error(t, err, "admin of an unrelated division is denied")
}

func TestUpdateStatus_Transitions(t *testing.T) {
	classifier := &fakeClassifier{result: &nlp.Result{Category: "IT", Confidence: 0.8}}
	admin := adminUser("a1", domain.DivisionSales)
	fx := newTicketFixture(t, classifier, submitter("u1", domain.DivisionSales), admin)

	created, _, err := fx.service.CreateTicket(context.Background(), "u1", TicketCreateInput{
		Title:       "wifi",
		Description: "down",
	})
	require.NoError(t, err)

	_, err = fx.service.UpdateStatus(context.Background(), admin, created.ID, domain.TicketStatusResolved)
	assert.Error(t, err, "new -> resolved is not allowed")

	updated, err := fx.service.UpdateStatus(context.Background(), admin, created.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	updated, err = fx.service.UpdateStatus(context.Background(), admin, created.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)

	_, err = fx.service.UpdateStatus(context.Background(), admin, created.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	_, err = fx.service.UpdateStatus(context.Background(), admin, created.ID, domain.TicketStatusInProgress)
	assert.Error(t, err, "closed is terminal")
}
