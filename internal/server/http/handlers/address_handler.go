package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AddressHandler serves the cascading address form.
type AddressHandler struct {
	facade AddressFacade
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(facade AddressFacade) *AddressHandler {
	return &AddressHandler{facade: facade}
}

// Provinces handles GET /api/addresses/provinces.
func (h *AddressHandler) Provinces(c *gin.Context) {
	provinces, err := h.facade.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.AddressEntry, 0, len(provinces))
	for _, p := range provinces {
		out = append(out, dto.AddressEntry{Code: p.Code, Name: p.Name})
	}
	c.JSON(http.StatusOK, out)
}

// SelectProvince handles PUT /api/addresses/province.
func (h *AddressHandler) SelectProvince(c *gin.Context) {
	var req dto.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	districts, err := h.facade.SelectProvince(c.Request.Context(), CurrentSession(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.AddressEntry, 0, len(districts))
	for _, d := range districts {
		out = append(out, dto.AddressEntry{Code: d.Code, Name: d.Name})
	}
	c.JSON(http.StatusOK, out)
}

// SelectDistrict handles PUT /api/addresses/district.
func (h *AddressHandler) SelectDistrict(c *gin.Context) {
	var req dto.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	wards, err := h.facade.SelectDistrict(c.Request.Context(), CurrentSession(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.AddressEntry, 0, len(wards))
	for _, w := range wards {
		out = append(out, dto.AddressEntry{Code: w.Code, Name: w.Name})
	}
	c.JSON(http.StatusOK, out)
}
