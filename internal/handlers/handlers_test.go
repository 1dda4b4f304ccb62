package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
	"healthmate-backend/internal/session"
)

type stubDispatcher struct {
	reply     string
	err       error
	calls     int
	lastImage []byte
}

func (s *stubDispatcher) Dispatch(_ context.Context, _ string, img []byte) (string, error) {
	s.calls++
	s.lastImage = img
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestService(d services.Dispatcher) (*services.HealthService, *session.MemoryStore) {
	store := session.NewMemoryStore(100, time.Hour)
	return services.NewHealthService(d, store), store
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

// ─── Session & Chat ───

func TestSessionHandler_Create(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{})
	tokens := middleware.NewSessionTokens("secret", time.Hour)
	h := NewSessionHandler(svc, tokens)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	var resp models.SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	id, err := tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if id != resp.ID {
		t.Errorf("token session %s does not match %s", id, resp.ID)
	}
}

func chatRequest(t *testing.T, tokens *middleware.SessionTokens, id uuid.UUID, message string) *http.Request {
	t.Helper()
	tok, err := tokens.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	body, _ := json.Marshal(models.ChatRequest{Message: message})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestChatHandler_Chat(t *testing.T) {
	d := &stubDispatcher{reply: "Drink water."}
	svc, _ := newTestService(d)
	tokens := middleware.NewSessionTokens("secret", time.Hour)
	sess, _ := svc.StartSession(context.Background())

	h := tokens.Middleware(http.HandlerFunc(NewChatHandler(svc).Chat))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, chatRequest(t, tokens, sess.ID, "I feel tired"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Reply != "Drink water." {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
	if len(resp.Turns) != 2 || resp.Turns[0].Role != models.RoleUser || resp.Turns[1].Role != models.RoleAssistant {
		t.Errorf("unexpected turns %+v", resp.Turns)
	}
}

func TestChatHandler_Chat_BackendUnavailable(t *testing.T) {
	d := &stubDispatcher{err: &services.Error{Kind: services.BackendUnavailable, Message: "The AI service is not configured"}}
	svc, _ := newTestService(d)
	tokens := middleware.NewSessionTokens("secret", time.Hour)
	sess, _ := svc.StartSession(context.Background())

	h := tokens.Middleware(http.HandlerFunc(NewChatHandler(svc).Chat))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, chatRequest(t, tokens, sess.ID, "hello"))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if apiErr := decodeError(t, rr); apiErr.Code != "AI_UNAVAILABLE" {
		t.Errorf("expected AI_UNAVAILABLE, got %q", apiErr.Code)
	}

	turns, err := svc.History(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("failed chat must not record turns, got %d", len(turns))
	}
}

func TestChatHandler_UnknownSession(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{reply: "ok"})
	tokens := middleware.NewSessionTokens("secret", time.Hour)

	h := tokens.Middleware(http.HandlerFunc(NewChatHandler(svc).Chat))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, chatRequest(t, tokens, uuid.New(), "hello"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestChatHandler_History(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{reply: "Rest well."})
	tokens := middleware.NewSessionTokens("secret", time.Hour)
	sess, _ := svc.StartSession(context.Background())
	svc.Chat(context.Background(), sess.ID, "sleep tips?")

	tok, _ := tokens.Issue(sess.ID)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rr := httptest.NewRecorder()
	tokens.Middleware(http.HandlerFunc(NewChatHandler(svc).History)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Turns []models.Turn `json:"turns"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Turns) != 2 || resp.Turns[0].Text != "sleep tips?" {
		t.Errorf("unexpected history %+v", resp.Turns)
	}
}

// ─── Error mapping ───

func TestHandleServiceError_Status(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", &services.Error{Kind: services.InvalidInput, Message: "Validation failed"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unavailable", &services.Error{Kind: services.BackendUnavailable}, http.StatusServiceUnavailable, "AI_UNAVAILABLE"},
		{"request failed", &services.Error{Kind: services.RequestFailed}, http.StatusBadGateway, "AI_ERROR"},
		{"empty", &services.Error{Kind: services.EmptyResponse}, http.StatusBadGateway, "AI_EMPTY_RESPONSE"},
		{"session missing", session.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped session missing", errors.Join(errors.New("lookup"), session.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, "req-1")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			apiErr := decodeError(t, rr)
			if apiErr.Code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, apiErr.Code)
			}
			if apiErr.RequestID != "req-1" {
				t.Errorf("expected request id echoed, got %q", apiErr.RequestID)
			}
		})
	}
}

// ─── Feature panels ───

func TestFeatureHandler_Symptoms(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalls  int
	}{
		{"valid", `{"symptoms":["Fever","Cough"]}`, http.StatusOK, 1},
		{"empty list", `{"symptoms":[]}`, http.StatusBadRequest, 0},
		{"blank only", `{"symptoms":["  "]}`, http.StatusBadRequest, 0},
		{"bad json", `{"symptoms":`, http.StatusBadRequest, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &stubDispatcher{reply: "See a doctor if it persists."}
			svc, _ := newTestService(d)
			h := NewFeatureHandler(svc, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/symptoms", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.Symptoms(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d body=%s", tc.wantStatus, rr.Code, rr.Body.String())
			}
			if d.calls != tc.wantCalls {
				t.Errorf("expected %d dispatches, got %d", tc.wantCalls, d.calls)
			}
		})
	}
}

func TestFeatureHandler_MeditationAndNutrition(t *testing.T) {
	d := &stubDispatcher{reply: "Breathe in."}
	svc, _ := newTestService(d)
	h := NewFeatureHandler(svc, 1<<20)

	rr := httptest.NewRecorder()
	h.Meditation(rr, httptest.NewRequest(http.MethodPost, "/api/v1/meditation",
		strings.NewReader(`{"type":"sleep_aid","duration_minutes":10}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("meditation: expected 200, got %d", rr.Code)
	}
	var text models.TextResponse
	json.NewDecoder(rr.Body).Decode(&text)
	if text.Text != "Breathe in." {
		t.Errorf("unexpected text %q", text.Text)
	}

	rr = httptest.NewRecorder()
	h.Meditation(rr, httptest.NewRequest(http.MethodPost, "/api/v1/meditation",
		strings.NewReader(`{"type":"sleep_aid","duration_minutes":45}`)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("out of range duration: expected 400, got %d", rr.Code)
	}
	if apiErr := decodeError(t, rr); apiErr.Fields["duration_minutes"] == "" {
		t.Errorf("expected duration_minutes field error, got %+v", apiErr.Fields)
	}

	rr = httptest.NewRecorder()
	h.Nutrition(rr, httptest.NewRequest(http.MethodPost, "/api/v1/nutrition",
		strings.NewReader(`{"goal":"muscle_gain","restrictions":["vegan"]}`)))
	if rr.Code != http.StatusOK {
		t.Errorf("nutrition: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Nutrition(rr, httptest.NewRequest(http.MethodPost, "/api/v1/nutrition",
		strings.NewReader(`{"goal":"keto"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown goal: expected 400, got %d", rr.Code)
	}
}

func multipartImage(t *testing.T, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "upload.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFeatureHandler_AnalyzeImage(t *testing.T) {
	img := pngBytes(t)

	tests := []struct {
		name       string
		data       []byte
		maxBytes   int64
		wantStatus int
		wantCalls  int
	}{
		{"png", img, 1 << 20, http.StatusOK, 1},
		{"not an image", []byte("hello, plain text"), 1 << 20, http.StatusBadRequest, 0},
		{"too large", img, 10, http.StatusRequestEntityTooLarge, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &stubDispatcher{reply: "Looks like a healthy salad."}
			svc, _ := newTestService(d)
			h := NewFeatureHandler(svc, tc.maxBytes)

			rr := httptest.NewRecorder()
			h.AnalyzeImage(rr, multipartImage(t, tc.data))

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tc.wantStatus, rr.Code, rr.Body.String())
			}
			if d.calls != tc.wantCalls {
				t.Errorf("expected %d dispatches, got %d", tc.wantCalls, d.calls)
			}
			if tc.wantCalls > 0 && len(d.lastImage) == 0 {
				t.Errorf("expected image to reach the dispatcher")
			}
		})
	}
}

func TestFeatureHandler_AnalyzeImage_MissingField(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{})
	h := NewFeatureHandler(svc, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no image here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.AnalyzeImage(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// ─── Charts, tips, feedback ───

func withChartType(req *http.Request, chartType string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("type", chartType)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestChartHandler(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{})
	h := NewChartHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withChartType(httptest.NewRequest(http.MethodGet, "/api/v1/charts/bmi_distribution", nil), "bmi_distribution"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var spec models.ChartSpec
	json.NewDecoder(rr.Body).Decode(&spec)
	if spec.Kind != models.ChartPie || len(spec.Categories) != len(spec.Values) || len(spec.Values) == 0 {
		t.Errorf("unexpected spec %+v", spec)
	}

	rr = httptest.NewRecorder()
	body := `{"data":[{"category":"Flu","value":12},{"category":"Cold","value":30}]}`
	h.Custom(rr, withChartType(httptest.NewRequest(http.MethodPost, "/api/v1/charts/common_health_issues", strings.NewReader(body)), "common_health_issues"))
	if rr.Code != http.StatusOK {
		t.Fatalf("custom: expected 200, got %d", rr.Code)
	}
	json.NewDecoder(rr.Body).Decode(&spec)
	if len(spec.Categories) != 2 || spec.Categories[0] != "Flu" || spec.Values[1] != 30 {
		t.Errorf("custom data not used: %+v", spec)
	}

	rr = httptest.NewRecorder()
	body = `{"data":[{"category":"Flu","value":120}]}`
	h.Custom(rr, withChartType(httptest.NewRequest(http.MethodPost, "/api/v1/charts/bmi_distribution", strings.NewReader(body)), "bmi_distribution"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("out of range value: expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Get(rr, withChartType(httptest.NewRequest(http.MethodGet, "/api/v1/charts/unknown", nil), "unknown"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown chart: expected 400, got %d", rr.Code)
	}
}

func TestInfoHandler(t *testing.T) {
	svc, _ := newTestService(&stubDispatcher{})
	h := NewInfoHandler(svc)

	rr := httptest.NewRecorder()
	h.DailyTip(rr, httptest.NewRequest(http.MethodGet, "/api/v1/tips/daily", nil))
	var tip map[string]string
	json.NewDecoder(rr.Body).Decode(&tip)
	if rr.Code != http.StatusOK || tip["tip"] == "" {
		t.Errorf("expected a tip, got %d %v", rr.Code, tip)
	}

	rr = httptest.NewRecorder()
	h.Feedback(rr, httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(`{"message":"Great app"}`)))
	if rr.Code != http.StatusAccepted {
		t.Errorf("feedback: expected 202, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Feedback(rr, httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(`{"message":"  "}`)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank feedback: expected 400, got %d", rr.Code)
	}
}
