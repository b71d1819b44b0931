package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/metrics"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/repository"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

const maxRequestBody = 1 << 20 // 1 MiB

const msgNoHotelReviews = "No reviews available for this hotel yet."

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type hotelCreateRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type hotelResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	Description      string  `json:"description"`
	AverageSentiment float64 `json:"average_sentiment"`
	TotalReviews     int64   `json:"total_reviews"`
}

type hotelDetailResponse struct {
	hotelResponse
	Reviews []reviewResponse `json:"reviews"`
}

type reviewCreateRequest struct {
	HotelID      int64  `json:"hotel_id"`
	ReviewerName string `json:"reviewer_name"`
	ReviewText   string `json:"review_text"`
}

type reviewResponse struct {
	ID             int64   `json:"id"`
	HotelID        int64   `json:"hotel_id"`
	ReviewerName   string  `json:"reviewer_name"`
	ReviewText     string  `json:"review_text"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
	CreatedAt      string  `json:"created_at"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

type summarizeRequest struct {
	HotelID   *int64  `json:"hotel_id"`
	HotelName *string `json:"hotel_name"`
	MaxLength *int    `json:"max_length"`
	MinLength *int    `json:"min_length"`
}

type summarizeResponse struct {
	HotelID          int64   `json:"hotel_id"`
	HotelName        string  `json:"hotel_name"`
	Summary          string  `json:"summary"`
	TotalReviews     int     `json:"total_reviews"`
	ProcessedReviews int     `json:"processed_reviews"`
	ModelUsed        *string `json:"model_used,omitempty"`
	InputLength      *int    `json:"input_length,omitempty"`
	Error            *string `json:"error,omitempty"`
	Note             *string `json:"note,omitempty"`
}

// listParams are the paging options of GET /hotels.
type listParams struct {
	Skip  int
	Limit int
}

func (s *Server) handleListHotels(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	hotels, err := s.repo.Hotels.List(r.Context(), params.Skip, params.Limit)
	if err != nil {
		s.logger.Error("list hotels error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list hotels")
		return
	}

	items := make([]hotelResponse, 0, len(hotels))
	for _, h := range hotels {
		items = append(items, toHotelResponse(h))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func parseListParams(query url.Values) (listParams, error) {
	params := listParams{Limit: repository.MaxListLimit}

	if val := strings.TrimSpace(query.Get("skip")); val != "" {
		skip, err := strconv.Atoi(val)
		if err != nil || skip < 0 {
			return params, fmt.Errorf("invalid skip value")
		}
		params.Skip = skip
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit <= 0 {
			return params, fmt.Errorf("invalid limit value")
		}
		params.Limit = min(limit, repository.MaxListLimit)
	}
	return params, nil
}

func (s *Server) handleCreateHotel(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req hotelCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Location) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name and location are required")
		return
	}

	hotel, err := s.repo.Hotels.Create(r.Context(), repository.HotelCreateParams{
		Name:        strings.TrimSpace(req.Name),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.logger.Error("create hotel error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create hotel")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/hotels/%d", hotel.ID))
	s.respondJSON(w, http.StatusCreated, toHotelResponse(hotel))
}

func (s *Server) handleGetHotel(w http.ResponseWriter, r *http.Request) {
	id, err := decodeHotelIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	hotel, err := s.repo.Hotels.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Hotel not found")
			return
		}
		s.logger.Error("fetch hotel error", "hotel_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch hotel")
		return
	}

	reviews, err := s.repo.Reviews.ListByHotel(r.Context(), hotel.ID)
	if err != nil {
		s.logger.Error("list reviews error", "hotel_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch hotel")
		return
	}

	resp := hotelDetailResponse{
		hotelResponse: toHotelResponse(hotel),
		Reviews:       make([]reviewResponse, 0, len(reviews)),
	}
	for _, rv := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(rv))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.ReviewerName) == "" || strings.TrimSpace(req.ReviewText) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "reviewer_name and review_text are required")
		return
	}

	if _, err := s.repo.Hotels.GetByID(r.Context(), req.HotelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Hotel not found")
			return
		}
		s.logger.Error("fetch hotel for review failed", "hotel_id", req.HotelID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review")
		return
	}

	result := s.analyzer.Analyze(r.Context(), req.ReviewText)
	metrics.RecordSentiment(string(result.Label), result.Error)
	if result.Error != "" {
		s.respondError(w, http.StatusInternalServerError, "SENTIMENT_ERROR", "Sentiment analysis failed: "+result.Error)
		return
	}

	review, _, err := s.repo.Reviews.Append(r.Context(), repository.ReviewAppendParams{
		HotelID:        req.HotelID,
		ReviewerName:   strings.TrimSpace(req.ReviewerName),
		ReviewText:     req.ReviewText,
		SentimentLabel: result.Label,
		SentimentScore: result.Score,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Hotel not found")
			return
		}
		s.logger.Error("append review error", "hotel_id", req.HotelID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review")
		return
	}
	metrics.ReviewsAppended.Inc()

	w.Header().Set("Location", fmt.Sprintf("/hotels/%d", review.HotelID))
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Text cannot be empty")
		return
	}

	result := s.analyzer.Analyze(r.Context(), req.Text)
	metrics.RecordSentiment(string(result.Label), result.Error)
	if result.Error != "" {
		s.respondError(w, http.StatusInternalServerError, "SENTIMENT_ERROR", "Sentiment analysis failed: "+result.Error)
		return
	}

	s.respondJSON(w, http.StatusOK, analyzeResponse{
		Text:       req.Text,
		Label:      string(result.Label),
		Score:      result.Score,
		Confidence: result.Confidence,
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	hasID := req.HotelID != nil && *req.HotelID != 0
	hasName := req.HotelName != nil && strings.TrimSpace(*req.HotelName) != ""
	if !hasID && !hasName {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Either hotel_id or hotel_name must be provided")
		return
	}

	var (
		hotel domain.Hotel
		err   error
	)
	if hasID {
		hotel, err = s.repo.Hotels.GetByID(r.Context(), *req.HotelID)
	} else {
		hotel, err = s.repo.Hotels.FindByName(r.Context(), *req.HotelName)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Hotel not found")
			return
		}
		s.logger.Error("fetch hotel for summary failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to summarize reviews")
		return
	}

	reviews, err := s.repo.Reviews.ListByHotel(r.Context(), hotel.ID)
	if err != nil {
		s.logger.Error("list reviews for summary failed", "hotel_id", hotel.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to summarize reviews")
		return
	}
	if len(reviews) == 0 {
		metrics.RecordSummary(metrics.TierMessage, 0)
		s.respondJSON(w, http.StatusOK, summarizeResponse{
			HotelID:   hotel.ID,
			HotelName: hotel.Name,
			Summary:   msgNoHotelReviews,
		})
		return
	}

	texts := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		if rv.ReviewText != "" {
			texts = append(texts, rv.ReviewText)
		}
	}

	start := time.Now()
	result := s.summarizer.Summarize(r.Context(), summarize.Request{
		Reviews:   texts,
		MaxLength: derefOr(req.MaxLength, summarize.DefaultMaxLength),
		MinLength: derefOr(req.MinLength, summarize.DefaultMinLength),
	})
	metrics.RecordSummary(summaryTier(result), time.Since(start))

	s.respondJSON(w, http.StatusOK, summarizeResponse{
		HotelID:          hotel.ID,
		HotelName:        hotel.Name,
		Summary:          result.Summary,
		TotalReviews:     result.TotalReviews,
		ProcessedReviews: result.ProcessedReviews,
		ModelUsed:        result.ModelUsed,
		InputLength:      result.InputLength,
		Error:            result.Error,
		Note:             result.Note,
	})
}

func summaryTier(result domain.SummaryResult) string {
	switch {
	case result.ModelUsed == nil:
		return metrics.TierMessage
	case *result.ModelUsed == summarize.ExtractiveFallback:
		return metrics.TierExtractive
	default:
		return metrics.TierModel
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "Request body too large")
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func toHotelResponse(h domain.Hotel) hotelResponse {
	return hotelResponse{
		ID:               h.ID,
		Name:             h.Name,
		Location:         h.Location,
		Description:      h.Description,
		AverageSentiment: h.AverageSentiment,
		TotalReviews:     h.TotalReviews,
	}
}

func toReviewResponse(rv domain.Review) reviewResponse {
	return reviewResponse{
		ID:             rv.ID,
		HotelID:        rv.HotelID,
		ReviewerName:   rv.ReviewerName,
		ReviewText:     rv.ReviewText,
		SentimentLabel: string(rv.SentimentLabel),
		SentimentScore: rv.SentimentScore,
		CreatedAt:      rv.CreatedAt.Format(time.RFC3339),
	}
}

func decodeHotelIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "hotelID")
	if raw == "" {
		return 0, fmt.Errorf("missing hotel id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid hotel id parameter")
	}
	return id, nil
}

func derefOr[T any](ptr *T, fallback T) T {
	if ptr == nil {
		return fallback
	}
	return *ptr
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}
