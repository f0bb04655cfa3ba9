package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/godswood/pkg/buildinfo"
	"github.com/matzehuels/godswood/pkg/cache"
	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/layout"
	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/tree"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// TreeSummary describes one registered tree.
type TreeSummary struct {
	Name    string  `json:"name"`
	BuildID string  `json:"build_id"`
	Depth   int     `json:"depth"`
	Nodes   int     `json:"nodes"`
	Skipped int     `json:"skipped,omitempty"`
	Levels  []Level `json:"levels,omitempty"`
}

// Level is a depth group's size and scale.
type Level struct {
	Depth int     `json:"depth"`
	Scale float64 `json:"scale"`
	Nodes int     `json:"nodes"`
}

// NodeResponse is a node as returned by lookups.
type NodeResponse struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Kind        string            `json:"kind"`
	Service     string            `json:"service"`
	Path        string            `json:"path,omitempty"`
	Paths       map[string]string `json:"paths,omitempty"`
	Parents     []uint64          `json:"parents,omitempty"`
	Children    []uint64          `json:"children,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.forest.Store().Poisoned() {
		status, code = "store corrupted", http.StatusServiceUnavailable
	}
	s.respondJSON(w, code, map[string]any{
		"status":  status,
		"version": buildinfo.Short(),
		"trees":   s.forest.Len(),
		"nodes":   s.forest.Store().Len(),
	})
}

func (s *Server) handleListTrees(w http.ResponseWriter, r *http.Request) {
	names := s.forest.Names()
	out := make([]TreeSummary, 0, len(names))
	for _, name := range names {
		if t, ok := s.forest.Tree(name); ok {
			out = append(out, summarize(t, false))
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddTree(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "", "document exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.respondError(w, http.StatusBadRequest, "", "read body: "+err.Error())
		return
	}

	t, err := s.forest.AddWood(r.Context(), body)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	w.Header().Set("Location", "/trees/"+t.Name())
	s.respondJSON(w, http.StatusCreated, summarize(t, true))
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tree(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, summarize(t, true))
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tree(w, r)
	if !ok {
		return
	}
	d, ok := s.depth(w, r)
	if !ok {
		return
	}

	refs := t.NodesAtDepth(d)
	out := make([]NodeResponse, 0, len(refs))
	for _, ref := range refs {
		n, err := t.Node(ref)
		if err != nil {
			s.respondAppError(w, err)
			return
		}
		resp := nodeResponse(n)
		if p, ok := n.Path(t.Name()); ok {
			resp.Path = p.String()
		}
		resp.Paths = nil
		out = append(out, resp)
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tree(w, r)
	if !ok {
		return
	}
	d, ok := s.depth(w, r)
	if !ok {
		return
	}
	scale, ok := t.Scale(d)
	if !ok {
		s.respondError(w, http.StatusNotFound, string(apperrors.ErrCodeNotFound),
			"tree "+t.Name()+" has no depth "+strconv.Itoa(d))
		return
	}
	s.respondJSON(w, http.StatusOK, Level{Depth: d, Scale: scale, Nodes: len(t.NodesAtDepth(d))})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tree(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := s.keyer.LayoutKey(t.Name(), t.BuildID().String(), t.BaseScale(), t.BaseGap())

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("layout cache read failed", "tree", t.Name(), "err", err)
	}
	if !hit {
		v, err, _ := s.layouts.Do(key, func() (any, error) {
			l, err := layout.Export(t)
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if err := l.Encode(&buf, layout.FormatJSON); err != nil {
				return nil, err
			}
			if err := s.cache.Set(ctx, key, buf.Bytes(), s.ttl); err != nil {
				s.logger.Warn("layout cache write failed", "tree", t.Name(), "err", err)
			}
			return buf.Bytes(), nil
		})
		if err != nil {
			s.respondAppError(w, err)
			return
		}
		data = v.([]byte)
	}

	etag := `"` + cache.Hash(data) + `"`
	w.Header().Set("ETag", etag)
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	n, err := s.forest.Lookup(path)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	resp := nodeResponse(n)
	if name, ok := node.ParseAppName(path); ok {
		if p, ok := n.Path(name); ok {
			resp.Path = p.String()
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// tree resolves the {name} parameter, responding 404 when it is unknown.
func (s *Server) tree(w http.ResponseWriter, r *http.Request) (*tree.Tree, bool) {
	name := chi.URLParam(r, "name")
	t, ok := s.forest.Tree(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, string(apperrors.ErrCodeNotFound), "tree "+strconv.Quote(name)+" not found")
	}
	return t, ok
}

// depth parses the {depth} parameter. Depths start at 1.
func (s *Server) depth(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "depth")
	d, err := strconv.Atoi(raw)
	if err != nil || d < 1 {
		s.respondError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidDepth), "depth must be a positive integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return d, true
}

func summarize(t *tree.Tree, withLevels bool) TreeSummary {
	sum := TreeSummary{
		Name:    t.Name(),
		BuildID: t.BuildID().String(),
		Depth:   t.Depth(),
		Nodes:   t.NodeCount(),
		Skipped: t.Skipped(),
	}
	if withLevels {
		for _, d := range t.Depths() {
			scale, _ := t.Scale(d)
			sum.Levels = append(sum.Levels, Level{Depth: d, Scale: scale, Nodes: len(t.NodesAtDepth(d))})
		}
	}
	return sum
}

func nodeResponse(n node.Node) NodeResponse {
	resp := NodeResponse{
		ID:          n.ID,
		Name:        n.Name,
		DisplayName: n.DisplayName,
		Kind:        n.Kind.String(),
		Service:     n.Service.String(),
		Parents:     ids(n.Parents),
		Children:    ids(n.Children),
	}
	if len(n.Paths) > 0 {
		resp.Paths = make(map[string]string, len(n.Paths))
		for root, p := range n.Paths {
			resp.Paths[root] = p.String()
		}
	}
	return resp
}

func ids(refs []node.Ref) []uint64 {
	if len(refs) == 0 {
		return nil
	}
	out := make([]uint64, len(refs))
	for i, r := range refs {
		out[i] = r.ID()
	}
	return out
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

// respondAppError maps coded errors to HTTP statuses.
func (s *Server) respondAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	s.respondError(w, status, string(code), apperrors.UserMessage(err))
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidPath, apperrors.ErrCodeInvalidDepth:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDanglingReference:
		return http.StatusNotFound
	case apperrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case apperrors.ErrCodeStoreCorrupted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
