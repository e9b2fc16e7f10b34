package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/leapstack-labs/dqcheck/internal/ingest"
	"github.com/leapstack-labs/dqcheck/internal/report"
	"github.com/leapstack-labs/dqcheck/internal/store"
	"github.com/leapstack-labs/dqcheck/pkg/checks"
	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// handleCheck accepts a multipart upload (field "file" with the CSV,
// optional field "rules" with the YAML rule set) and responds with the
// violation report: JSON by default, the downloadable CSV report file
// with ?format=csv. Violations never produce an HTTP error; ingestion
// and configuration problems are 400s.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("parsing upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("missing upload field %q", "file"))
		return
	}
	defer func() { _ = file.Close() }()

	tbl, err := table.ReadCSV(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	rs, err := s.requestRules(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := rs.Bind(tbl); err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	rep := checks.Evaluate(tbl, rs)

	if s.store != nil {
		run := &store.Run{
			Source:     header.Filename,
			Engine:     ingest.EngineCSV,
			Rows:       tbl.NumRows(),
			Columns:    tbl.NumColumns(),
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err := s.store.SaveRun(run, rep); err != nil {
			s.logger.Error("failed to save run", "error", err)
		}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="dq_report.csv"`)
		if err := report.WriteCSV(w, rep); err != nil {
			s.logger.Error("failed to write csv report", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, header.Filename, rep); err != nil {
		s.logger.Error("failed to write json report", "error", err)
	}
}

// requestRules loads the rule set from the upload, falling back to the
// server's configured rules file.
func (s *Server) requestRules(r *http.Request) (*rules.RuleSet, error) {
	rulesFile, _, err := r.FormFile("rules")
	if err == nil {
		defer func() { _ = rulesFile.Close() }()
		b, err := io.ReadAll(rulesFile)
		if err != nil {
			return nil, fmt.Errorf("reading rules upload: %w", err)
		}
		return rules.Parse(b)
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return nil, fmt.Errorf("reading rules upload: %w", err)
	}

	if s.rulesPath == "" {
		return nil, fmt.Errorf("%w: no rules uploaded and no server default configured", rules.ErrConfig)
	}
	return rules.LoadFile(s.rulesPath)
}

// handleChecks lists the registered check definitions.
func (s *Server) handleChecks(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, checks.All())
}

// handleRuns lists recent runs from the store.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondJSON(w, http.StatusOK, []*store.Run{})
		return
	}

	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Errorf("bad limit: %q", q))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	s.respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request failed", "status", status, "error", err)
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}
