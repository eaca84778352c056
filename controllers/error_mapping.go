package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/services"
	"github.com/retailkart/promokart/utils"
)

// respondServiceError maps the engine's typed errors onto the standard HTTP
// responses. Anything unrecognised is an internal failure.
func respondServiceError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	var validation *services.ValidationError
	var ineligible *services.IneligibleError
	var conflict *services.ConflictError
	var internal *services.InternalError

	switch {
	case errors.As(err, &notFound):
		utils.NotFound(c, notFound.Error())
	case errors.As(err, &validation):
		utils.BadRequest(c, validation.Message, nil)
	case errors.As(err, &ineligible):
		utils.BadRequest(c, "Not eligible", gin.H{"reasons": ineligible.Reasons})
	case errors.As(err, &conflict):
		utils.Conflict(c, conflict.Message, gin.H{"kind": conflict.Kind})
	case errors.As(err, &internal):
		utils.LogError("Internal service error: %v", internal)
		utils.InternalServerError(c, "Something went wrong, please try again", nil)
	default:
		utils.LogError("Unexpected service error: %v", err)
		utils.InternalServerError(c, "Something went wrong, please try again", nil)
	}
}
