package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onboarding/internal/application"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/submit", h.submit)
}

// applicationRequest is the partial input accepted by create and update.
// Absent fields stay nil and are never touched on the record.
type applicationRequest struct {
	Name                      *string          `json:"name"`
	DateOfBirth               *string          `json:"dateOfBirth"`
	IDDocument                *string          `json:"idDocument"`
	AccountType               *string          `json:"accountType"`
	StartingBalance           *decimal.Decimal `json:"startingBalance"`
	MonthlySalary             *decimal.Decimal `json:"monthlySalary"`
	InterestedInOtherProducts *bool            `json:"interestedInOtherProducts"`
	Email                     *string          `json:"email"`
	Address                   *addressRequest  `json:"address"`
}

type addressRequest struct {
	StreetName  *string `json:"streetName"`
	HouseNumber *string `json:"houseNumber"`
	PostCode    *string `json:"postCode"`
	City        *string `json:"city"`
}

// toPatch maps the wire request onto a domain patch. Unparseable dates and
// unknown enum values are treated as malformed input, the same class of
// failure as broken JSON.
func (req applicationRequest) toPatch() (application.Patch, error) {
	patch := application.Patch{
		Name:                      req.Name,
		IDDocument:                req.IDDocument,
		StartingBalance:           req.StartingBalance,
		MonthlySalary:             req.MonthlySalary,
		InterestedInOtherProducts: req.InterestedInOtherProducts,
		Email:                     req.Email,
	}

	if req.DateOfBirth != nil {
		dob, err := time.ParseInLocation(time.DateOnly, *req.DateOfBirth, time.UTC)
		if err != nil {
			return application.Patch{}, fmt.Errorf("parsing dateOfBirth: %w", err)
		}

		patch.DateOfBirth = &dob
	}

	if req.AccountType != nil {
		at, err := application.ParseAccountType(*req.AccountType)
		if err != nil {
			return application.Patch{}, fmt.Errorf("parsing accountType: %w", err)
		}

		patch.AccountType = &at
	}

	if req.Address != nil {
		patch.Address = &application.AddressPatch{
			StreetName:  req.Address.StreetName,
			HouseNumber: req.Address.HouseNumber,
			PostCode:    req.Address.PostCode,
			City:        req.Address.City,
		}
	}

	return patch, nil
}

// decodePatch reads the request body into a patch. An empty body is a valid
// empty patch, so a bare POST still opens a draft.
func decodePatch(r *http.Request) (application.Patch, error) {
	var req applicationRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return application.Patch{}, nil
		}

		return application.Patch{}, err
	}

	return req.toPatch()
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r)
	if err != nil {
		writeMalformed(w)
		return
	}

	app, err := h.svc.Create(r.Context(), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/applications/%s", app.ID))
	writeJSON(w, http.StatusCreated, toResponse(app))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid id")
		return
	}

	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid id")
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		writeMalformed(w)
		return
	}

	app, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid id")
		return
	}

	app, err := h.svc.Submit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(app))
}
