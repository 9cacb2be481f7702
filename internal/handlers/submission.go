package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/store"
)

const (
	maxMultipartMemory = 16 << 20
	formFieldImage     = "image"
	formFieldCampaign  = "campaignId"
	formFieldName      = "customerName"
	formFieldPhone     = "phone"
)

// SubmissionHandler provides HTTP handlers for photo submissions.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

// NewSubmissionHandler constructs a handler with the provided service.
func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// SubmissionRouter registers submission routes on the given router.
// Creation is the public form endpoint; listing, review, and deletion
// require auth.
func SubmissionRouter(r chi.Router, submissionService *services.SubmissionService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSubmissionHandler(submissionService)

	r.Post("/", handler.CreateSubmission)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListSubmissions)
		r.Patch("/{submissionID}/status", handler.ReviewSubmission)
		r.Delete("/{submissionID}", handler.DeleteSubmission)
	})
}

func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	var campaignID *int
	if raw := strings.TrimSpace(r.URL.Query().Get("campaignId")); raw != "" {
		id, err := parseIDParam(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid campaign id")
			return
		}
		campaignID = &id
	}

	submissions, err := h.submissionService.List(r.Context(), campaignID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch submissions")
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	campaignID, err := parseIDParam(strings.TrimSpace(r.FormValue(formFieldCampaign)))
	if err != nil {
		writeError(w, http.StatusBadRequest, "campaign id, customer name, and phone are required")
		return
	}
	customerName := strings.TrimSpace(r.FormValue(formFieldName))
	phone := strings.TrimSpace(r.FormValue(formFieldPhone))
	if customerName == "" || phone == "" {
		writeError(w, http.StatusBadRequest, "campaign id, customer name, and phone are required")
		return
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.submissionService.Create(r.Context(), services.CreateSubmissionParams{
		CampaignID:   campaignID,
		CustomerName: customerName,
		Phone:        phone,
		Image:        image,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "campaign not found")
		case errors.Is(err, services.ErrCampaignNotActive):
			writeError(w, http.StatusBadRequest, "campaign is not active")
		case errors.Is(err, services.ErrFileRejected):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create submission")
		}
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "submissionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	submission, err := h.submissionService.Review(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "valid status is required")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "submission not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update submission status")
		}
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "submissionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	if err := h.submissionService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete submission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ReviewRequest struct {
	Status string `json:"status"`
}

func parseImageFile(form *multipart.Form) (services.SubmissionImage, error) {
	if form == nil {
		return services.SubmissionImage{}, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return services.SubmissionImage{}, errors.New("image file is required")
	}
	if len(files) > 1 {
		return services.SubmissionImage{}, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return services.SubmissionImage{}, errors.New("failed to read image file")
	}

	data, err := readFileLimited(file, services.MaxImageBytes)
	_ = file.Close()
	if err != nil {
		return services.SubmissionImage{}, err
	}

	return services.SubmissionImage{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, services.ErrFileRejected
	}
	return data, nil
}
