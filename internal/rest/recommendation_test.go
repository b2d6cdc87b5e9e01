package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecomRecommender/domain"

	"github.com/labstack/echo/v4"
)

type fakeRecommendationService struct {
	recs []domain.RecommendedProduct
}

func (f *fakeRecommendationService) GetRecommendationsForUser(_ context.Context, _ string, _ int, _ bool) ([]domain.RecommendedProduct, error) {
	return f.recs, nil
}

func (f *fakeRecommendationService) GetSimilarProducts(_ context.Context, _ string, _ int, _ bool) ([]domain.RecommendedProduct, error) {
	return f.recs, nil
}

func (f *fakeRecommendationService) GetSentimentRecommendations(_ context.Context, _ string, _ int) ([]domain.RecommendedProduct, error) {
	return f.recs, nil
}

func (f *fakeRecommendationService) GetPopularProducts(_ context.Context, _ string, _ int) ([]domain.RecommendedProduct, error) {
	return f.recs, nil
}

func (f *fakeRecommendationService) GetSentimentFocusedRecommendations(_ context.Context, _ string, _ int) ([]domain.RecommendedProduct, error) {
	return f.recs, nil
}

func TestGetForUserOK(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommendationService{
		recs: []domain.RecommendedProduct{{
			Product:             domain.Product{ID: "p1", Name: "Widget"},
			RecommendationScore: 0.9,
			RecommendationType:  domain.RecommendationTypeHybrid,
		}},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&include_sentiment=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("alice")

	if err := handler.GetForUser(c); err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
}

func TestGetForUserRejectsBadLimit(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommendationService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("alice")

	if err := handler.GetForUser(c); err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rec.Code)
	}
}

func TestGetSentimentBasedRequiresUserID(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommendationService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetSentimentBased(c); err != nil {
		t.Fatalf("GetSentimentBased: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", rec.Code)
	}

	var body ResponseError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.Message != "user_id is required" {
		t.Fatalf("unexpected error message: %q", body.Message)
	}
}

func TestGetSentimentBasedOK(t *testing.T) {
	handler := NewRecommendationHandler(&fakeRecommendationService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?user_id=alice", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetSentimentBased(c); err != nil {
		t.Fatalf("GetSentimentBased: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
