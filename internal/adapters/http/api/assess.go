package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nephroworks/cdss/internal/adapters/modelstore"
	"github.com/nephroworks/cdss/internal/domain/features"
	"github.com/nephroworks/cdss/internal/domain/model"
)

// AssessHandler handles assessment submissions.
type AssessHandler struct {
	deps Dependencies
}

// NewAssessHandler creates a new assess handler.
func NewAssessHandler(deps Dependencies) *AssessHandler {
	return &AssessHandler{deps: deps}
}

// assessRequest mirrors the intake form: nine clinical fields plus the
// explanation and research-log toggles.
type assessRequest struct {
	Creatinine           *float64 `json:"creatinine"`
	DeltaCreatinine24h   *float64 `json:"delta_cr_24h"`
	Potassium            *float64 `json:"potassium"`
	Bicarbonate          *float64 `json:"bicarbonate"`
	BUN                  *float64 `json:"bun"`
	PHLevel              *float64 `json:"ph_level"`
	FluidOverloadGrade   *int     `json:"fluid_overload_grade"`
	UremicEncephalopathy *bool    `json:"uremic_encephalopathy"`
	UrineOutput24h       *float64 `json:"urine_output_24h"`
	Explain              bool     `json:"explain"`
	Save                 bool     `json:"save"`
}

// validate ensures all nine fields are present. The model silently
// mis-scores on missing columns, so absence is a hard client error.
func (r assessRequest) validate() error {
	required := []struct {
		name string
		ok   bool
	}{
		{"creatinine", r.Creatinine != nil},
		{"delta_cr_24h", r.DeltaCreatinine24h != nil},
		{"potassium", r.Potassium != nil},
		{"bicarbonate", r.Bicarbonate != nil},
		{"bun", r.BUN != nil},
		{"ph_level", r.PHLevel != nil},
		{"fluid_overload_grade", r.FluidOverloadGrade != nil},
		{"uremic_encephalopathy", r.UremicEncephalopathy != nil},
		{"urine_output_24h", r.UrineOutput24h != nil},
	}
	for _, f := range required {
		if !f.ok {
			return errors.New("missing " + f.name)
		}
	}
	return nil
}

func (r assessRequest) submission() model.Submission {
	return model.Submission{
		Observation: model.Observation{
			Creatinine:           *r.Creatinine,
			DeltaCreatinine24h:   *r.DeltaCreatinine24h,
			Potassium:            *r.Potassium,
			Bicarbonate:          *r.Bicarbonate,
			BUN:                  *r.BUN,
			PHLevel:              *r.PHLevel,
			FluidOverloadGrade:   *r.FluidOverloadGrade,
			UremicEncephalopathy: *r.UremicEncephalopathy,
			UrineOutput24h:       *r.UrineOutput24h,
		},
		Explain: r.Explain,
		Save:    r.Save,
	}
}

// HandlePostAssess handles POST /assess requests.
func (h *AssessHandler) HandlePostAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assess"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}

	assessment, err := h.deps.Assess(r.Context(), req.submission())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, assessment)
	case errors.Is(err, modelstore.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", wrap(op, err))
	case errors.Is(err, model.ErrInvalidObservation):
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
	case errors.Is(err, features.ErrSchemaMismatch):
		writeError(w, http.StatusInternalServerError, "schema_mismatch", wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
	}
}
