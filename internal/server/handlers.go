package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/arlaunch/arlaunch/pkg/ar"
	"github.com/arlaunch/arlaunch/pkg/browser"
	"github.com/arlaunch/arlaunch/pkg/intent"
	"github.com/arlaunch/arlaunch/pkg/scan"
	"github.com/arlaunch/arlaunch/pkg/store"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	// Parse query params for filtering
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	opts := store.ListOptions{
		Limit:   limit,
		Page:    q.Get("page"),
		Profile: q.Get("profile"),
		Mode:    q.Get("mode"),
	}

	resolutions, err := s.DB.ListRecent(r.Context(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(resolutions)
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(browser.Profiles())
}

type ResolveRequest struct {
	Attrs    map[string]string `json:"attrs"`
	Page     string            `json:"page"`
	Profiles []string          `json:"profiles"`
}

type ResolveResponse struct {
	Issues      []scan.Issue
	Evaluations []scan.Evaluation
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg, err := ar.ConfigFromAttrs(req.Attrs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profiles, err := resolveProfiles(req.Profiles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var evaluations []scan.Evaluation
	for _, profile := range profiles {
		ev, err := scan.Evaluate(r.Context(), cfg, req.Page, profile, s.Gates)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		evaluations = append(evaluations, ev)
	}

	json.NewEncoder(w).Encode(ResolveResponse{
		Issues:      scan.Diagnose(cfg, req.Page),
		Evaluations: evaluations,
	})
}

type QuickLookRequest struct {
	File               string `json:"file"`
	Page               string `json:"page"`
	Title              string `json:"title"`
	CheckoutSubtitle   string `json:"checkout_subtitle"`
	Price              string `json:"price"`
	FixedScale         bool   `json:"fixed_scale"`
	Link               string `json:"link"`
	ApplePayButtonType string `json:"apple_pay_button_type"`
	CallToAction       string `json:"call_to_action"`
	CustomBanner       string `json:"custom_banner"`
	CustomHeight       string `json:"custom_height"`
}

func (s *Server) handleQuickLook(w http.ResponseWriter, r *http.Request) {
	var req QuickLookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buttonType, err := intent.ParseApplePayButtonType(req.ApplePayButtonType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := intent.ParseBannerHeight(req.CustomHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ql, err := intent.NewQuickLook(req.File, req.Page, intent.QuickLookParams{
		Title:              req.Title,
		CheckoutSubtitle:   req.CheckoutSubtitle,
		Price:              req.Price,
		Resizable:          !req.FixedScale,
		Link:               req.Link,
		ApplePayButtonType: buttonType,
		CallToAction:       req.CallToAction,
		CustomBanner:       req.CustomBanner,
		CustomHeight:       height,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": ql.ToURL()})
}

type SceneViewerRequest struct {
	File        string `json:"file"`
	Page        string `json:"page"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Sound       string `json:"sound"`
	FallbackURL string `json:"fallback_url"`
	FixedScale  bool   `json:"fixed_scale"`
}

func (s *Server) handleSceneViewer(w http.ResponseWriter, r *http.Request) {
	var req SceneViewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sv, err := intent.NewSceneViewer(req.File, req.Page, intent.SceneViewerParams{
		Title:       req.Title,
		Link:        req.Link,
		Sound:       req.Sound,
		FallbackURL: req.FallbackURL,
		Resizable:   !req.FixedScale,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": sv.ToURL()})
}

type ScanRequest struct {
	URL      string   `json:"url"`
	Profiles []string `json:"profiles"`
	Record   bool     `json:"record"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profiles, err := resolveProfiles(req.Profiles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scanner := &scan.Scanner{Profiles: profiles, Gates: s.Gates}
	result, err := scanner.ScanPage(r.Context(), req.URL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if req.Record {
		if err := s.DB.InsertResolutions(r.Context(), result.Records()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	json.NewEncoder(w).Encode(result)
}

func resolveProfiles(names []string) ([]browser.Profile, error) {
	if len(names) == 0 {
		return browser.Profiles(), nil
	}

	var profiles []browser.Profile
	for _, name := range names {
		profile, ok := browser.LookupProfile(name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", name)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
