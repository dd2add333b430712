package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/service"
)

type issueLicenseRequest struct {
	UserID     string     `json:"userId" binding:"required"`
	Type       string     `json:"type"`
	MaxDevices int        `json:"maxDevices"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

type licenseResponse struct {
	ID           string     `json:"id"`
	Key          string     `json:"key"`
	UserID       string     `json:"userId"`
	Type         string     `json:"type"`
	MaxDevices   int        `json:"maxDevices"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	Revoked      bool       `json:"revoked"`
	RevokeReason string     `json:"revokeReason,omitempty"`
}

func toLicenseResponse(license models.License) licenseResponse {
	return licenseResponse{
		ID:           license.ID,
		Key:          license.Key,
		UserID:       license.UserID,
		Type:         string(license.Type),
		MaxDevices:   license.MaxDevices,
		ExpiresAt:    license.ExpiresAt,
		Revoked:      license.Revoked,
		RevokeReason: license.RevokeReason,
	}
}

func (h HandlerSet) IssueLicense(c *gin.Context) {
	var req issueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, autherr.Validation(err.Error()))
		return
	}

	license, err := h.licenseService.Issue(c.Request.Context(), service.IssueInput{
		UserID:     req.UserID,
		Type:       models.LicenseType(req.Type),
		MaxDevices: req.MaxDevices,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"license": toLicenseResponse(license)})
}

func (h HandlerSet) ValidateLicense(c *gin.Context) {
	key := c.Param("key")

	result, err := h.licenseService.Validate(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrLicenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "license_not_found"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type revokeLicenseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h HandlerSet) RevokeLicense(c *gin.Context) {
	var req revokeLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, autherr.Validation(err.Error()))
		return
	}

	license, err := h.licenseService.Revoke(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLicenseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "license_not_found"})
		case errors.Is(err, repository.ErrAlreadyRevoked):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "license_already_revoked",
				"license": toLicenseResponse(license),
			})
		default:
			respondError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"license": toLicenseResponse(license)})
}
