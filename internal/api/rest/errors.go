package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/copperline/pipeline-core/internal/api/shared/errors"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string) {
	logger.Error(err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondDomainError translates domain error types into HTTP responses.
// The taxonomy matters to callers: a validation error is correctable input,
// an invalid transition is a state conflict, and a DNC violation is a
// category of its own that clients must surface loudly.
func respondDomainError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var transitionErr *domain.InvalidTransitionError
	var stageErr *domain.InvalidStageTransitionError
	var dncErr *domain.DNCViolationError

	switch {
	case errors.Is(err, domain.ErrProspectNotFound):
		respondNotFound(c, "Prospect not found")
	case errors.Is(err, domain.ErrCompanyNotFound):
		respondNotFound(c, "Company not found")
	case errors.As(err, &dncErr):
		c.JSON(http.StatusForbidden, &apierrors.APIError{
			Code:    apierrors.ErrCodeDNCViolation,
			Message: "Do-not-contact violation",
			Details: dncErr.Error(),
		})
	case errors.As(err, &transitionErr):
		code := apierrors.ErrCodeInvalidTransition
		if transitionErr.AlreadyInState {
			code = apierrors.ErrCodeAlreadyInState
		}
		c.JSON(http.StatusConflict, &apierrors.APIError{
			Code:    code,
			Message: "Invalid transition",
			Details: transitionErr.Error(),
		})
	case errors.As(err, &stageErr):
		c.JSON(http.StatusConflict, &apierrors.APIError{
			Code:    apierrors.ErrCodeInvalidTransition,
			Message: "Invalid stage transition",
			Details: stageErr.Error(),
		})
	case errors.Is(err, domain.ErrManualDecisionRequired):
		c.JSON(http.StatusConflict, &apierrors.APIError{
			Code:    apierrors.ErrCodeManualDecision,
			Message: "Manual decision required",
			Details: err.Error(),
		})
	case errors.As(err, &validationErr):
		respondValidationError(c, validationErr.Error())
	default:
		respondInternalError(c, err, "Internal server error")
	}
}
