package controllers

import (
	"net/http"

	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// ReviewController handles HTTP requests for product reviews.
type ReviewController struct {
	reviewService services.ReviewService
}

// NewReviewController creates a new ReviewController.
func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// ListApprovedReviews handles GET /products/:id/reviews. Only approved
// reviews are returned, together with their average rating.
func (rc *ReviewController) ListApprovedReviews(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	result, svcErr := rc.reviewService.ApprovedReviews(ctx.Request.Context(), productID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// SubmitReview handles POST /products/:id/reviews.
func (rc *ReviewController) SubmitReview(ctx *gin.Context) {
	identity, err := middleware.GetIdentity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req models.SubmitReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	review, svcErr := rc.reviewService.SubmitReview(ctx.Request.Context(), identity, productID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted and awaiting moderation",
		"review":  review,
	})
}

// ApproveReview handles PATCH /admin/reviews/:id/approve (admin only).
func (rc *ReviewController) ApproveReview(ctx *gin.Context) {
	reviewID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if svcErr := rc.reviewService.ApproveReview(ctx.Request.Context(), reviewID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Review approved"})
}

// DeleteReview handles DELETE /admin/reviews/:id (admin only).
func (rc *ReviewController) DeleteReview(ctx *gin.Context) {
	reviewID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if svcErr := rc.reviewService.DeleteReview(ctx.Request.Context(), reviewID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
