package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
)

type whitelistEntryResponse struct {
	DeviceID    string    `json:"deviceId"`
	Notes       string    `json:"notes"`
	IsBootstrap bool      `json:"isBootstrap"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h HandlerSet) ListWhitelist(c *gin.Context) {
	entries, err := h.whitelist.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]whitelistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, whitelistEntryResponse{
			DeviceID:    entry.DeviceID,
			Notes:       entry.Notes,
			IsBootstrap: entry.IsBootstrap,
			Revoked:     entry.Revoked,
			CreatedAt:   entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"entries": items})
}

type addWhitelistRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
	Notes    string `json:"notes"`
}

func (h HandlerSet) AddWhitelistEntry(c *gin.Context) {
	var req addWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, autherr.Validation(err.Error()))
		return
	}

	if err := h.whitelist.Add(c.Request.Context(), req.DeviceID, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveWhitelistEntry(c *gin.Context) {
	deviceID := c.Param("deviceId")

	if err := h.whitelist.Remove(c.Request.Context(), deviceID); err != nil {
		if errors.Is(err, repository.ErrWhitelistEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "whitelist_entry_not_found"})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ResetDeviceBinding(c *gin.Context) {
	licenseKey := c.Param("licenseKey")

	if err := h.licenseService.ResetDevice(c.Request.Context(), licenseKey); err != nil {
		if errors.Is(err, repository.ErrActivationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activation_not_found"})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

func (h HandlerSet) UpdateUserStatus(c *gin.Context) {
	var req updateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, autherr.Validation(err.Error()))
		return
	}

	if err := h.users.UpdateStatus(c.Request.Context(), c.Param("id"), models.UserStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
