package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/leaseguard/leaseguard/internal/observability"
)

// LicenseVerifier checks broker license registrations.
type LicenseVerifier interface {
	VerifyLicense(ctx context.Context, address, officeName, licenseNumber string) (bool, error)
}

// LicenseHandler handles broker license verification requests.
type LicenseHandler struct {
	logger   *observability.Logger
	verifier LicenseVerifier
}

// NewLicenseHandler creates a new license handler.
func NewLicenseHandler(logger *observability.Logger, verifier LicenseVerifier) *LicenseHandler {
	return &LicenseHandler{
		logger:   logger,
		verifier: verifier,
	}
}

// LicenseRequestDTO is the API request for license verification.
type LicenseRequestDTO struct {
	Address       string `json:"address"`
	OfficeName    string `json:"officename"`
	LicenseNumber string `json:"licensenumber"`
}

// LicenseResponseDTO is the API response for license verification.
type LicenseResponseDTO struct {
	Verified bool `json:"verified"`
}

// Verify handles POST /api/v1/license/verify.
func (h *LicenseHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO LicenseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required", "")
		return
	}
	if reqDTO.OfficeName == "" {
		writeError(w, http.StatusBadRequest, "officename is required", "")
		return
	}
	if reqDTO.LicenseNumber == "" {
		writeError(w, http.StatusBadRequest, "licensenumber is required", "")
		return
	}

	verified, err := h.verifier.VerifyLicense(ctx, reqDTO.Address, reqDTO.OfficeName, reqDTO.LicenseNumber)
	if err != nil {
		status, message := mapError(err)
		h.logger.Error().Err(err).Int("status", status).Msg("license verification failed")
		writeError(w, status, message, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LicenseResponseDTO{Verified: verified})
}
