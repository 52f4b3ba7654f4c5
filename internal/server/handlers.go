package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/pipeline"
	"github.com/matzehuels/secassess/pkg/report"
	"github.com/matzehuels/secassess/pkg/store"
)

// healthResponse reports liveness and whether the record store answers.
type healthResponse struct {
	OK bool `json:"ok"`
	DB bool `json:"db"`
}

// exportRequest is the body of an export call.
type exportRequest struct {
	Images         []report.Image `json:"images"`
	ExportSections *[]string      `json:"exportSections"`
}

// uploadResponse answers an export with ?upload=true.
type uploadResponse struct {
	URL  string `json:"url"`
	File string `json:"file"`
	Size int    `json:"size"`
}

// handleHealth handles GET /health and GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{OK: true}
	if st := s.runner.Store; st != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		resp.DB = st.Ping(ctx) == nil
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListAssessments handles GET /api/assessments.
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	st, err := s.store()
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := st.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetAssessment handles GET /api/assessments/{id}.
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRecordID(id); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.store()
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := st.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleExport handles GET and POST /api/export/{format}/{id}.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := pipeline.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := s.decodeExport(w, r)
	if err != nil {
		if stderrors.As(err, new(*http.MaxBytesError)) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		RecordID: chi.URLParam(r, "id"),
		Format:   format,
		Images:   req.Images,
		Refresh:  r.URL.Query().Get("refresh") == "true",
	}
	if req.ExportSections != nil {
		sel, err := report.Select(*req.ExportSections...)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Sections = sel
	}

	upload := r.URL.Query().Get("upload") == "true"
	if upload && s.uploader == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "uploads are not configured"))
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if upload {
		url, err := s.uploader.Put(r.Context(), res.Record.ID, res.FileName, res.ContentType, res.Artifact)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{URL: url, File: res.FileName, Size: len(res.Artifact)})
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	h.Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	h.Set("X-Cache", cacheHeader(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

// decodeExport reads an optional export body. GET requests and empty
// bodies yield the zero request.
func (s *Server) decodeExport(w http.ResponseWriter, r *http.Request) (exportRequest, error) {
	var req exportRequest
	if r.Method != http.MethodPost || r.Body == nil {
		return req, nil
	}
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return req, err
		}
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid export request body")
	}
	return req, nil
}

func (s *Server) store() (store.Store, error) {
	if s.runner.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no record store configured")
	}
	return s.runner.Store, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
