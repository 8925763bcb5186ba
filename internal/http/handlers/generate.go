package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/pipeline"
)

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	ImageBase64 string  `json:"image_base64"`
	TargetShape string  `json:"target_shape"`
	HeightMM    float64 `json:"height_mm"`
	WidthMM     float64 `json:"width_mm"`
	DepthMM     float64 `json:"depth_mm"`
	WallThickMM float64 `json:"wall_thickness_mm"`
	Pattern     string  `json:"pattern"`
}

type generateResponse struct {
	JobID      string         `json:"job_id"`
	STLPath    string         `json:"stl_path"`
	SCADSource string         `json:"scad_source"`
	FileSize   int64          `json:"file_size"`
	Model      string         `json:"model,omitempty"`
	Strategy   string         `json:"strategy"`
	Parameters map[string]any `json:"parameters"`
}

type generateFailure struct {
	Code       string `json:"code"`
	Error      string `json:"error"`
	SCADSource string `json:"scad_source,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

// Generate runs the full pipeline for one request and blocks the caller until
// a terminal state is reached.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	image, mime, err := decodeImage(req.ImageBase64, a.Config.MaxImageBytes)
	if err != nil {
		a.error(w, http.StatusBadRequest, string(domain.FailureInput), err.Error())
		return
	}

	result, err := a.Pipeline.Run(r.Context(), domain.GenerationRequest{
		Prompt:      req.Prompt,
		Image:       image,
		ImageMIME:   mime,
		TargetShape: req.TargetShape,
		HeightMM:    req.HeightMM,
		WidthMM:     req.WidthMM,
		DepthMM:     req.DepthMM,
		WallThickMM: req.WallThickMM,
		Pattern:     req.Pattern,
	})
	if err != nil {
		a.writeFailure(w, err)
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		JobID:      result.JobID,
		STLPath:    result.STLPath,
		SCADSource: result.Source,
		FileSize:   result.FileSize,
		Model:      result.Model,
		Strategy:   string(result.Strategy),
		Parameters: result.Parameters,
	})
}

func (a *App) writeFailure(w http.ResponseWriter, err error) {
	var failure *pipeline.Failure
	if !errors.As(err, &failure) {
		a.error(w, http.StatusInternalServerError, string(domain.FailureInternal), "generation failed")
		return
	}
	a.json(w, statusForCategory(failure.Category), generateFailure{
		Code:       string(failure.Category),
		Error:      failure.Err.Error(),
		SCADSource: failure.Source,
		Hint:       failure.Hint,
	})
}

func statusForCategory(category domain.FailureCategory) int {
	switch category {
	case domain.FailureInput:
		return http.StatusBadRequest
	case domain.FailureConfig:
		return http.StatusServiceUnavailable
	case domain.FailureGeneration:
		return http.StatusBadGateway
	case domain.FailureSanitize, domain.FailureCompile:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeImage accepts a bare base64 payload or a data: URL and enforces the
// decoded size bound.
func decodeImage(encoded string, maxBytes int64) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, "", nil
	}
	mime := ""
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.Index(encoded, ",")
		if comma < 0 {
			return nil, "", errors.New("malformed data url")
		}
		header := encoded[len("data:"):comma]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		mime = header
		encoded = encoded[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errors.New("image payload is not valid base64")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", errors.New("image payload exceeds size limit")
	}
	return data, mime, nil
}
