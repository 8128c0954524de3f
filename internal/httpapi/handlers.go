package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/innkeep/localize/internal/detect"
	"github.com/innkeep/localize/internal/translation"
)

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
}

type preloadRequest struct {
	Phrases   []string `json:"phrases"`
	Languages []string `json:"languages"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target_lang is required")
	}

	result := s.svc.Translate(c.Request().Context(), req.Text, req.TargetLang, req.SourceLang)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handlePreload(c echo.Context) error {
	var req preloadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Phrases) == 0 || len(req.Languages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "phrases and languages are required")
	}

	scheduled := s.svc.Preload(c.Request().Context(), req.Phrases, req.Languages)
	return c.JSON(http.StatusAccepted, map[string]any{"status": "scheduled", "scheduled": scheduled})
}

func (s *Server) handleDetect(c echo.Context) error {
	sample := c.QueryParam("sample")

	// The request itself carries the locale signals: Accept-Language as the
	// browser hint and an optional edge-provided country language header as
	// the geo hint. The session detector is shared so its memo applies
	// across requests.
	signals := detect.StaticSource{
		Locale: firstAcceptLanguage(c.Request().Header.Get("Accept-Language")),
		Geo:    c.Request().Header.Get("X-Geo-Language"),
	}

	result := s.svc.Detector().DetectWith(c.Request().Context(), sample, signals)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, translation.LanguageOptions(s.opts.Registry))
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Stats())
}

func (s *Server) handleCacheClear(c echo.Context) error {
	s.svc.ClearCache()
	s.svc.ClearDetectionCache()
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

func firstAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if comma := strings.IndexByte(header, ','); comma >= 0 {
		header = header[:comma]
	}
	return strings.TrimSpace(header)
}
