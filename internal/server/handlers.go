package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/persona"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error string       `json:"error"`
	Code  kerrors.Code `json:"code"`
}

type saveResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	ID     string `json:"id"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := kerrors.HTTPStatus(err)
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: kerrors.UserMessage(err), Code: code})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	report, err := pipeline.Parse(name, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	people, err := s.readPeople(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Validate(people))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeUnsupported, "saving is disabled"))
		return
	}
	people, err := s.readPeople(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Save(r.Context(), people)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("saved personas", "count", len(people), "path", snap.Location)
	writeJSON(w, http.StatusOK, saveResponse{Status: "ok", Path: snap.Location, ID: snap.ID})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeUnsupported, "saving is disabled"))
		return
	}
	snap, err := s.store.Latest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	if s.avatars == nil {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeUnsupported, "avatar uploads are disabled"))
		return
	}
	personID := chi.URLParam(r, "person_id")
	if err := kerrors.ValidatePersonID(personID); err != nil {
		s.writeError(w, r, err)
		return
	}
	file, name, err := s.formFile(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	url, err := s.avatars.Save(r.Context(), personID, name, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: url})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	people, err := s.readPeople(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.pipelineOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), people, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	people, err := s.readPeople(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.pipelineOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	var data []byte
	if format == pipeline.FormatJSON || format == pipeline.FormatCSV {
		data, err = pipeline.RenderRecords(people, format)
	} else {
		var res *pipeline.Result
		if res, err = s.runner.Execute(r.Context(), people, opts); err == nil {
			data = res.Artifacts[format]
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.FileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Request decoding
// =============================================================================

// readPeople decodes the body as a person list. The lenient upload decoder
// is used, so edited tables may send numeric ids or ";"-joined parents.
func (s *Server) readPeople(w http.ResponseWriter, r *http.Request) ([]persona.Person, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	people, err := kio.ReadJSON(body)
	if err != nil {
		return nil, err
	}
	return people, nil
}

// formFile returns the multipart "file" part and its client file name.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(s.opts.MaxUploadSize); err != nil {
		return nil, "", kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "read multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "missing \"file\" field")
	}
	return file, header.Filename, nil
}

// pipelineOptions reads render options from the query string on top of the
// server defaults: renderer, detailed, pinned, scale, title, min_gap and
// row_spacing.
func (s *Server) pipelineOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Layout:   s.opts.Layout,
		Presets:  s.opts.Presets,
		BaseURL:  s.opts.BaseURL,
		Renderer: q.Get("renderer"),
		Title:    q.Get("title"),
		Detailed: q.Get("detailed") == "true",
		Pinned:   q.Get("pinned") == "true",
	}
	for name, dst := range map[string]*float64{
		"scale":       &opts.Scale,
		"min_gap":     &opts.Layout.MinGap,
		"row_spacing": &opts.Layout.RowSpacing,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "query parameter %s", name)
		}
		*dst = f
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
