package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/models"
	"reviewhub/internal/service"
)

// createReviewRequest has no user id field; the author always comes from the
// token.
type createReviewRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	ReviewText string `json:"review_text"`
	Rating     int    `json:"rating"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func newReviewResponses(reviews []models.ReviewSummary) []reviewResponse {
	resp := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, reviewResponse{
			ID:        r.ID,
			Author:    r.Author(),
			FirstName: r.AuthorFirstName,
			LastName:  r.AuthorLastName,
			Title:     r.Title,
			Content:   r.Content,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}
	return resp
}

func (h HandlerSet) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), service.CreateReviewInput{
		UserID:  userID,
		Title:   req.Title,
		Content: firstNonEmpty(req.Content, req.ReviewText),
		Rating:  req.Rating,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted successfully!",
		"review": gin.H{
			"id":         review.ID,
			"title":      review.Title,
			"content":    review.Content,
			"rating":     review.Rating,
			"created_at": review.CreatedAt,
		},
	})
}

func (h HandlerSet) ListReviews(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponses(reviews))
}

func (h HandlerSet) MyReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponses(reviews))
}

func (h HandlerSet) ReviewStats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
