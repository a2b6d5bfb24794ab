package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"closercollege/internal/certificate"
	"closercollege/internal/gateway/util"
)

// CertificateHandler exposes completion certificates over REST.
type CertificateHandler struct {
	Certificates *certificate.Service
}

// ListMine handles GET /certificates
func (h *CertificateHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	certs, err := h.Certificates.ListByUser(r.Context(), user.ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, certs)
}

// Verify handles GET /certificates/verify/{code}
//
// Public route: employers verify a certificate with just its code.
func (h *CertificateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	cert, err := h.Certificates.Verify(r.Context(), code)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, cert)
}
