package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-service/models"
	"storefront-service/repository"

	aws_pkg "storefront-service/pkg/aws"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewService manages product reviews and their moderation state.
type ReviewService interface {
	SubmitReview(ctx context.Context, identity models.Identity, productID uint, req *models.SubmitReviewRequest) (*models.Review, *ServiceError)
	ApprovedReviews(ctx context.Context, productID uint) (*models.ProductReviews, *ServiceError)
	ApproveReview(ctx context.Context, reviewID uint) *ServiceError
	DeleteReview(ctx context.Context, reviewID uint) *ServiceError
}

// reviewServiceImpl implements ReviewService.
type reviewServiceImpl struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	customers   CustomerService
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	metrics     *aws_pkg.MetricsClient
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService. metrics may be nil.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	customers CustomerService,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics *aws_pkg.MetricsClient,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		customers:   customers,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		metrics:     metrics,
		logger:      logger,
	}
}

// SubmitReview creates an unapproved review for the product. The caller
// cannot override the moderation state. A second review by the same customer
// for the same product hits the (customer_id, product_id) unique index and
// is reported as a conflict.
func (s *reviewServiceImpl) SubmitReview(ctx context.Context, identity models.Identity, productID uint, req *models.SubmitReviewRequest) (*models.Review, *ServiceError) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to look up product", zap.Uint("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to submit review"}
	}

	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	review := &models.Review{
		ProductID:  productID,
		CustomerID: customer.ID,
		Text:       req.Text,
		Stars:      req.Stars,
		IsApproved: false,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if isDuplicateKey(err) {
			return nil, &ServiceError{StatusCode: 409, Message: "You have already reviewed this product"}
		}
		s.logger.Error("Failed to create review",
			zap.Uint("product_id", productID), zap.Uint("customer_id", customer.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to submit review"}
	}

	s.logger.Info("Review submitted",
		zap.Uint("review_id", review.ID),
		zap.Uint("product_id", productID),
		zap.Uint("customer_id", customer.ID),
		zap.Int("stars", review.Stars),
	)
	s.publishReviewSubmittedEvent(ctx, review)

	if s.metrics.IsEnabled() {
		go func() {
			mctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.metrics.RecordCount(mctx, aws_pkg.MetricReviewsSubmitted,
				map[string]string{"Service": "storefront-service"})
		}()
	}

	return review, nil
}

// ApprovedReviews returns the approved reviews for a product with their
// average rating. The average is 0 when no review is approved. An unknown
// product is not found, same as GetProduct.
func (s *reviewServiceImpl) ApprovedReviews(ctx context.Context, productID uint) (*models.ProductReviews, *ServiceError) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to look up product", zap.Uint("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list reviews"}
	}

	reviews, err := s.reviewRepo.FindApprovedByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.Uint("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list reviews"}
	}

	avg, err := s.reviewRepo.AverageStars(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to compute average rating", zap.Uint("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list reviews"}
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	return &models.ProductReviews{Reviews: reviews, AverageStars: avg}, nil
}

// ApproveReview marks a pending review as visible (admin only).
func (s *reviewServiceImpl) ApproveReview(ctx context.Context, reviewID uint) *ServiceError {
	if err := s.reviewRepo.Approve(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Review not found"}
		}
		s.logger.Error("Failed to approve review", zap.Uint("review_id", reviewID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to approve review"}
	}
	s.logger.Info("Review approved", zap.Uint("review_id", reviewID))
	return nil
}

// DeleteReview removes a rejected review (admin only).
func (s *reviewServiceImpl) DeleteReview(ctx context.Context, reviewID uint) *ServiceError {
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Review not found"}
		}
		s.logger.Error("Failed to delete review", zap.Uint("review_id", reviewID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete review"}
	}
	s.logger.Info("Review deleted", zap.Uint("review_id", reviewID))
	return nil
}

// publishReviewSubmittedEvent notifies moderators via SNS. Failures are
// logged, not surfaced: the review is already persisted.
func (s *reviewServiceImpl) publishReviewSubmittedEvent(ctx context.Context, review *models.Review) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		s.logger.Warn("SNS client not configured, skipping review_submitted event")
		return
	}

	event := models.ReviewSubmittedEvent{
		EventType:  "review_submitted",
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		CustomerID: review.CustomerID,
		Stars:      review.Stars,
		Timestamp:  time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal review_submitted event", zap.Error(err))
		return
	}

	if err := s.snsClient.Publish(ctx, s.snsTopicArn, eventBytes); err != nil {
		s.logger.Error("Failed to publish review_submitted event", zap.Error(err))
		return
	}

	s.logger.Info("Published review_submitted event", zap.Uint("review_id", review.ID))
}
