package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"quire/internal/event"
	"quire/internal/kv"
	"quire/internal/registry/models"
	"quire/internal/registry/store"
	"quire/pkg/requestcontext"
)

type recordedEvent struct {
	eventType  event.Type
	documentID string
	status     string
}

type capturingEvents struct {
	events []recordedEvent
}

func (c *capturingEvents) Record(eventType event.Type, documentID, status string) {
	c.events = append(c.events, recordedEvent{eventType, documentID, status})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type RegistrySuite struct {
	suite.Suite
	ctx      context.Context
	clock    time.Time
	events   *capturingEvents
	registry *Registry
}

func (s *RegistrySuite) SetupTest() {
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.clock)
	s.events = &capturingEvents{}
	s.registry = New(store.New(kv.NewMemoryStore()), s.events, nil, nil, discardLogger())
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestCreateSetsDefaults() {
	doc, err := s.registry.Create(s.ctx, "Contract", "pdf", []string{"http://x"})
	s.Require().NoError(err)

	s.True(strings.HasPrefix(doc.ID, "doc_"), "id %q should carry the doc_ prefix", doc.ID)
	s.Equal("Contract", doc.Title)
	s.Equal("pdf", doc.Type)
	s.Equal(models.StatusPending, doc.Status)
	s.Equal(s.clock, doc.CreatedAt)
	s.Equal([]string{"http://x"}, doc.URLs)
	s.Nil(doc.Selections)
	s.Nil(doc.AnalysisResult)
}

func (s *RegistrySuite) TestCreateGeneratesUniqueIDsWithinOneTick() {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
		s.Require().NoError(err)
		s.False(seen[doc.ID], "duplicate id %q", doc.ID)
		seen[doc.ID] = true
	}
}

func (s *RegistrySuite) TestCreateThenGetAndList() {
	doc, err := s.registry.Create(s.ctx, "Contract", "pdf", []string{"http://x"})
	s.Require().NoError(err)

	got, err := s.registry.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(doc, got)

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(index, 1)
	s.Equal(doc.ID, index[0].ID)
	s.Equal(doc.Status, index[0].Status)
}

func (s *RegistrySuite) TestGetMissingReturnsNotFound() {
	_, err := s.registry.Get(s.ctx, "doc_nonexistent")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *RegistrySuite) TestListOnFreshRegistryIsEmpty() {
	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(index)
	s.Empty(index)
}

func (s *RegistrySuite) TestListIsIdempotent() {
	_, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	first, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	second, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *RegistrySuite) TestListOrderIsReverseCreationOrder() {
	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		doc, err := s.registry.Create(s.ctx, title, "pdf", nil)
		s.Require().NoError(err)
		ids = append(ids, doc.ID)
	}

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(index, 3)
	s.Equal(ids[2], index[0].ID)
	s.Equal(ids[1], index[1].ID)
	s.Equal(ids[0], index[2].ID)
}

func (s *RegistrySuite) TestTransitionStatusUpdatesBothNamespaces() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.TransitionStatus(s.ctx, doc.ID, models.StatusProcessed))

	got, err := s.registry.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusProcessed, got.Status)

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(index, 1)
	s.Equal(models.StatusProcessed, index[0].Status)
}

func (s *RegistrySuite) TestTransitionStatusDoesNotReorderIndex() {
	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		doc, err := s.registry.Create(s.ctx, title, "pdf", nil)
		s.Require().NoError(err)
		ids = append(ids, doc.ID)
	}

	s.Require().NoError(s.registry.TransitionStatus(s.ctx, ids[1], models.StatusNeedsReview))

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(index, 3)
	s.Equal(ids[2], index[0].ID)
	s.Equal(ids[1], index[1].ID)
	s.Equal(ids[0], index[2].ID)
	s.Equal(models.StatusNeedsReview, index[1].Status)
	s.Equal(models.StatusPending, index[0].Status)
	s.Equal(models.StatusPending, index[2].Status)
}

func (s *RegistrySuite) TestAllStatusTransitionsPermitted() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	// No transition graph: any status may move to any other, including back.
	for _, status := range []models.Status{
		models.StatusProcessed,
		models.StatusNeedsReview,
		models.StatusPending,
		models.StatusNeedsReview,
	} {
		s.Require().NoError(s.registry.TransitionStatus(s.ctx, doc.ID, status))
		got, err := s.registry.Get(s.ctx, doc.ID)
		s.Require().NoError(err)
		s.Equal(status, got.Status)
	}
}

func (s *RegistrySuite) TestTransitionStatusOnUnknownIDIsNoopSuccess() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.TransitionStatus(s.ctx, "doc_nonexistent", models.StatusProcessed))

	// Nothing changed for the real document or the index.
	got, err := s.registry.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(index, 1)
	s.Equal(doc.ID, index[0].ID)
}

func (s *RegistrySuite) TestReplaceSelectionsIsFullReplacement() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	first := []models.Selection{
		{ID: 1, Color: "red", Points: []float64{0, 0, 1, 1}, Text: "t", Type: "rect"},
		{ID: 2, Color: "blue", Points: []float64{2, 2}, Text: "u", Type: "point"},
	}
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, first))

	second := []models.Selection{
		{ID: 9, Color: "green", Points: []float64{5, 5}, Text: "v", Type: "point"},
	}
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, second))

	got, err := s.registry.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(second, got.Selections)
}

func (s *RegistrySuite) TestReplaceSelectionsWithEmptyClears() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, []models.Selection{
		{ID: 1, Color: "red", Points: []float64{0, 0, 1, 1}, Text: "t", Type: "rect"},
	}))

	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, []models.Selection{}))

	got, err := s.registry.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.NotNil(got.Selections, "cleared selections read back as [], not absent")
	s.Empty(got.Selections)
}

func (s *RegistrySuite) TestReplaceSelectionsDoesNotTouchIndex() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)

	before, err := s.registry.List(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, []models.Selection{
		{ID: 1, Color: "red", Points: []float64{0, 0}, Text: "t", Type: "point"},
	}))

	after, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *RegistrySuite) TestReplaceSelectionsOnUnknownIDIsNoopSuccess() {
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, "doc_nonexistent", []models.Selection{
		{ID: 1, Color: "red", Points: []float64{0, 0}, Text: "t", Type: "point"},
	}))

	index, err := s.registry.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(index)
}

func (s *RegistrySuite) TestMutationsEmitEvents() {
	doc, err := s.registry.Create(s.ctx, "A", "pdf", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.registry.TransitionStatus(s.ctx, doc.ID, models.StatusProcessed))
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, doc.ID, nil))

	s.Require().Len(s.events.events, 3)
	s.Equal(recordedEvent{event.TypeDocumentCreated, doc.ID, "Pending"}, s.events.events[0])
	s.Equal(recordedEvent{event.TypeStatusChanged, doc.ID, "Processed"}, s.events.events[1])
	s.Equal(recordedEvent{event.TypeSelectionsReplaced, doc.ID, ""}, s.events.events[2])
}

func (s *RegistrySuite) TestNoopMutationsEmitNoEvents() {
	s.Require().NoError(s.registry.TransitionStatus(s.ctx, "doc_nonexistent", models.StatusProcessed))
	s.Require().NoError(s.registry.ReplaceSelections(s.ctx, "doc_nonexistent", nil))
	s.Empty(s.events.events)
}
