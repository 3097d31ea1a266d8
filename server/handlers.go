package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makoyyylouie/tomato-ai/advice"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/images"
	"github.com/makoyyylouie/tomato-ai/labels"
	"github.com/makoyyylouie/tomato-ai/pipeline"
	"github.com/makoyyylouie/tomato-ai/store"
)

// diseaseReport is one disease finding in an analyze response, with its
// knowledge base entry attached when one exists.
type diseaseReport struct {
	Name       string        `json:"name"`
	Confidence float32       `json:"confidence"`
	Source     string        `json:"source"`
	Advice     *advice.Entry `json:"advice,omitempty"`
}

// analyzeResponse is the JSON body returned by POST /analyze.
type analyzeResponse struct {
	Detected   bool            `json:"detected"`
	Message    string          `json:"message,omitempty"`
	Mode       string          `json:"mode,omitempty"`
	Status     string          `json:"status,omitempty"`
	Ripeness   string          `json:"ripeness,omitempty"`
	Confidence float32         `json:"confidence,omitempty"`
	Diseases   []diseaseReport `json:"diseases,omitempty"`
	Image      string          `json:"image,omitempty"`
	ScanID     string          `json:"scan_id,omitempty"`
}

func (s *Server) handleIndex(c echo.Context) error {
	sess := s.session(c)
	if !sess.LoggedIn {
		return c.Render(http.StatusOK, "login.html", nil)
	}
	return c.Render(http.StatusOK, "scanner.html", map[string]any{
		"Username": sess.Username,
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	err := s.accounts.Register(
		c.FormValue("username"),
		c.FormValue("email"),
		c.FormValue("password"),
		c.FormValue("full_name"),
	)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	case errors.Is(err, store.ErrDuplicateUsername),
		errors.Is(err, store.ErrInvalidEmail),
		errors.Is(err, store.ErrInvalidPassword):
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	default:
		s.logger.Error("registration failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	username := c.FormValue("username")
	account, err := s.accounts.Login(username, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": err.Error()})
		}
		s.logger.Error("login failed", "username", username, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	if err := s.setSessionUser(c, username); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"username":  username,
		"full_name": account.FullName,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.setSessionUser(c, ""); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAnalyze(c echo.Context, sess *Session) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image upload")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
	}

	mode := pipeline.Mode(c.FormValue("mode"))
	if mode == "" {
		mode = pipeline.ModeAuto
	}

	if !s.analyzer.Ready() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "detection models are not available")
	}

	result, err := s.analyzer.Analyze(c.Request().Context(), data, mode, detect.ThresholdDefault)
	if err != nil {
		if errors.Is(err, pipeline.ErrModelUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "the selected model is not available")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "could not analyze the uploaded image")
	}

	if !result.Detected {
		resp := analyzeResponse{
			Detected: false,
			Message:  "No tomato fruit or leaf detected. Try a clearer, closer photo.",
		}
		// The gatekeeper banner, when available, shows the user what the
		// models saw instead.
		if result.Annotated != nil {
			if banner, err := images.EncodeJPEG(result.Annotated); err == nil {
				resp.Image = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(banner)
			}
		}
		return c.JSON(http.StatusOK, resp)
	}

	imagePath, err := s.history.SaveImage(sess.Username, data)
	if err != nil {
		s.logger.Error("failed to save scan image", "username", sess.Username, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save scan")
	}

	reports := make([]diseaseReport, 0, len(result.Diseases))
	displayNames := make([]string, 0, len(result.Diseases))
	for _, d := range result.Diseases {
		name := labels.DisplayName(d.Name)
		displayNames = append(displayNames, name)
		report := diseaseReport{
			Name:       name,
			Confidence: d.Confidence,
			Source:     string(d.Source),
		}
		if entry, ok := advice.Lookup(d.Name, d.NormalizedName, advice.ForSource(string(d.Source))); ok {
			report.Advice = &entry
		}
		reports = append(reports, report)
	}

	scan := s.history.NewScan(sess.Username, result.Mode, result.HealthStatus, result.Ripeness, displayNames, imagePath)
	if err := s.history.Append(scan); err != nil {
		s.logger.Error("failed to record scan", "username", sess.Username, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save scan")
	}

	annotated, err := images.EncodeJPEG(result.Annotated)
	if err != nil {
		s.logger.Error("failed to encode annotated image", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render result")
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		Detected:   true,
		Mode:       result.Mode,
		Status:     result.HealthStatus,
		Ripeness:   result.Ripeness,
		Confidence: result.MaxConfidence,
		Diseases:   reports,
		Image:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(annotated),
		ScanID:     scan.ScanID,
	})
}

func (s *Server) handleHistory(c echo.Context, sess *Session) error {
	sess.CachedHistory = s.history.List(sess.Username)
	return c.JSON(http.StatusOK, sess.CachedHistory)
}

func (s *Server) handleDeleteScan(c echo.Context, sess *Session) error {
	scanID := c.Param("scanID")
	if err := s.history.Delete(sess.Username, scanID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "scan not found")
		}
		s.logger.Error("failed to delete scan", "username", sess.Username, "scan_id", scanID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete scan")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleScanImage(c echo.Context, sess *Session) error {
	name := filepath.Base(c.Param("*"))
	// Users may only fetch their own scan images.
	if !strings.HasPrefix(name, sess.Username+"_") {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.File(filepath.Join(s.scansDir, name))
}

func (s *Server) handleProfile(c echo.Context, sess *Session) error {
	account, ok := s.accounts.Get(sess.Username)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	lastLogin := ""
	if account.LastLogin != nil {
		lastLogin = *account.LastLogin
	}
	return c.JSON(http.StatusOK, map[string]any{
		"username":   sess.Username,
		"email":      account.Email,
		"full_name":  account.FullName,
		"created_at": account.CreatedAt,
		"last_login": lastLogin,
	})
}
