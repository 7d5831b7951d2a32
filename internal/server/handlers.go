package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/standardbeagle/dctlforge/internal/ast"
	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/internal/roundtrip"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

type contentRequest struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

type editRequest struct {
	Content string                 `json:"content"`
	Edits   map[string]interface{} `json:"edits"`
}

type parseResponse struct {
	Result      param.ParsingResult `json:"result"`
	Groups      []param.Group       `json:"groups"`
	Summary     string              `json:"summary"`
	Suggestions []string            `json:"suggestions"`
}

type editResponse struct {
	Code     string   `json:"code"`
	Modified []string `json:"modified"`
}

type validateResponse struct {
	FileError  string              `json:"fileError,omitempty"`
	Validation dctlfile.Validation `json:"validation"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"connections": s.conns.Load(),
		"cached":      s.cache.Len(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	params, err := param.DecodeParameters(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code, err := s.Generate(params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ast.ErrDuplicateID) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.publish(events.CodeGenerated, r.RemoteAddr, map[string]interface{}{
		"parameters": len(param.Enabled(params)),
		"bytes":      len(code),
	})
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decode(w, r, &req) {
		return
	}

	result := s.parser.Parse(req.Content)
	s.publish(events.FileParsed, req.Name, map[string]interface{}{
		"parameters": result.TotalFound,
		"errors":     len(result.ParseErrors),
	})

	writeJSON(w, http.StatusOK, parseResponse{
		Result:      result,
		Groups:      param.GroupParameters(result.Parameters, nil),
		Summary:     parser.Summary(result),
		Suggestions: parser.Suggest(result),
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}

	session := roundtrip.NewSession(s.parser)
	session.Load(req.Content)

	// apply in name order so error reporting is stable
	names := make([]string, 0, len(req.Edits))
	for name := range req.Edits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := session.Set(name, fmt.Sprint(req.Edits[name])); err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, roundtrip.ErrUnknownParameter) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		s.publish(events.ParameterEdited, r.RemoteAddr, map[string]interface{}{
			"name":  name,
			"value": req.Edits[name],
		})
	}

	var modified []string
	for _, p := range session.Parameters() {
		if p.Modified() {
			modified = append(modified, p.Name)
		}
	}
	writeJSON(w, http.StatusOK, editResponse{Code: session.ModifiedCode(), Modified: modified})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp := validateResponse{Validation: dctlfile.ValidateContent(req.Content)}
	if req.Name != "" {
		if err := s.limits.ValidateFile(req.Name, int64(len(req.Content))); err != nil {
			resp.FileError = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
