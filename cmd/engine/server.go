package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
	"github.com/piyushdaiya/dotescrow-kit/internal/validator"
	"github.com/sirupsen/logrus"
)

const (
	defaultDisplayChars = 6
	networkH160         = "H160"
)

type Server struct {
	store   *Store
	metrics *Metrics
	limiter *RateLimiter
}

func NewServer(store *Store, metrics *Metrics, limiter *RateLimiter) *Server {
	return &Server{store: store, metrics: metrics, limiter: limiter}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Get("/check", s.handleCheck)
		r.Get("/validate", s.handleValidate)
		r.Get("/format", s.handleFormat)
		r.Get("/convert", s.handleConvert)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Count(r.Context()); err != nil {
		logrus.WithError(err).Error("health check: database unavailable")
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	address := ss58.TrimAddress(r.URL.Query().Get("address"))
	if address == "" {
		http.Error(w, "Missing address parameter", http.StatusBadRequest)
		return
	}
	resp := validator.EngineResponse{Address: address}

	var (
		hit *FlaggedAccount
		err error
	)
	if ss58.IsH160(address) {
		resp.Network = networkH160
		hit, err = s.store.LookupH160(r.Context(), strings.ToLower(address))
	} else {
		res := ss58.ValidateAddress(address)
		s.metrics.observeValidation(res.IsValid)
		resp.Validation = &res
		if !res.IsValid {
			writeJSON(w, http.StatusOK, resp)
			return
		}
		resp.Network = res.Network
		var acc *ss58.Account
		if acc, err = ss58.Decode(address); err == nil {
			hit, err = s.store.LookupPublicKey(r.Context(), acc.PublicKeyHex())
		}
	}
	if err != nil {
		logrus.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Error("watchlist lookup failed")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if hit != nil {
		s.metrics.flagHits.Inc()
		resp.Flagged = true
		resp.Source = hit.Source
		resp.Reason = hit.Reason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	res := ss58.ValidateAddress(r.URL.Query().Get("address"))
	s.metrics.observeValidation(res.IsValid)
	writeJSON(w, http.StatusOK, res)
}

type formatResponse struct {
	Address string `json:"address"`
	Display string `json:"display"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := intParam(q.Get("start"), defaultDisplayChars)
	if err != nil {
		http.Error(w, "start must be an integer", http.StatusBadRequest)
		return
	}
	end, err := intParam(q.Get("end"), defaultDisplayChars)
	if err != nil {
		http.Error(w, "end must be an integer", http.StatusBadRequest)
		return
	}
	address := q.Get("address")
	writeJSON(w, http.StatusOK, formatResponse{
		Address: address,
		Display: ss58.FormatAddressForDisplay(address, start, end),
	})
}

type convertResponse struct {
	Address    string             `json:"address"`
	Format     ss58.AddressFormat `json:"format"`
	H160       string             `json:"h160,omitempty"`
	ReviveH160 string             `json:"revive_h160,omitempty"`
	SS58       string             `json:"ss58,omitempty"`
	Prefix     *uint16            `json:"prefix,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := ss58.TrimAddress(q.Get("address"))
	resp := convertResponse{Address: address, Format: ss58.DetectAddressFormat(address)}

	switch resp.Format {
	case ss58.AddressFormatSS58:
		h160, err := ss58.SS58ToH160(address)
		if err != nil {
			resp.Error = err.Error()
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		resp.H160 = h160
		resp.ReviveH160, _ = ss58.SubstrateToH160(address)
	case ss58.AddressFormatH160:
		prefix, err := intParam(q.Get("prefix"), int(ss58.DefaultSS58Prefix))
		if err != nil || prefix < 0 || prefix > 16383 {
			http.Error(w, "prefix must be an integer between 0 and 16383", http.StatusBadRequest)
			return
		}
		p := uint16(prefix)
		resp.Prefix = &p
		resp.SS58, err = ss58.H160ToSS58(address, p)
		if err != nil {
			resp.Error = err.Error()
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
	default:
		resp.Error = "unrecognized address format"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
}
