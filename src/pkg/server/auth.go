package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var request loginRequest
	if err := c.Bind(&request); err != nil {
		tl.Log(tl.Warning, palette.Yellow, "Login error: %s", err)
		return errorJSON(c, http.StatusInternalServerError, "An error occurred during login")
	}
	if request.Username == "" || request.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
	}

	if !s.deps.Credentials.Match(request.Username, request.Password) {
		if !s.deps.Credentials.Configured() {
			tl.Log(tl.Warning, palette.PurpleBright, "Login refused: dashboard credentials are %s", "not configured")
		}
		tl.Log(tl.Info, palette.Yellow, "Failed login for '%s' from '%s'", strings.TrimSpace(request.Username), c.RealIP())
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}

	session := s.gate.Login(c, s.deps.Credentials.Username)
	tl.Log(tl.Info1, palette.Green, "Operator '%s' logged in, session expires %s", session.User, session.ExpiresAt.Format("2006-01-02 15:04"))
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Login successful"})
}

func (s *Server) logout(c echo.Context) error {
	s.gate.Logout(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
