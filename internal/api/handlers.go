package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trade-journal/internal/models"
	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

// GET /health reports 503 when a component is unhealthy.
func (s *Server) health(c *gin.Context) {
	report := s.checker.Check(c.Request.Context())
	data := gin.H{
		"status":     strings.ToLower(string(report.Status)),
		"trades":     len(s.journal.Trades(store.TradeFilter{})),
		"uptime":     report.Uptime,
		"components": report.Components,
	}
	if !report.Healthy() {
		c.JSON(http.StatusServiceUnavailable, Response{Code: CodeInternal, Message: "unhealthy", Data: data})
		return
	}
	success(c, data)
}

// GET /api/v1/trades?symbol=&strategy=&direction=&from=&to=&limit=
func (s *Server) listTrades(c *gin.Context) {
	filter := store.TradeFilter{
		Symbol:    strings.ToUpper(c.Query("symbol")),
		Strategy:  c.Query("strategy"),
		Direction: models.Direction(c.Query("direction")),
	}
	if filter.Direction != "" && !filter.Direction.Valid() {
		badRequest(c, "direction must be long or short")
		return
	}
	var err error
	if filter.StartDate, err = parseTime(c.Query("from")); err != nil {
		badRequest(c, "invalid from: "+err.Error())
		return
	}
	if filter.EndDate, err = parseTime(c.Query("to")); err != nil {
		badRequest(c, "invalid to: "+err.Error())
		return
	}
	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
	}
	trades := s.journal.Trades(filter)
	if trades == nil {
		trades = []models.Trade{}
	}
	success(c, trades)
}

// parseTime accepts RFC 3339 or a plain date.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

// POST /api/v1/trades
func (s *Server) addTrade(c *gin.Context) {
	var in models.TradeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.journal.AddTrade(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, res)
}

func (s *Server) getTrade(c *gin.Context) {
	t, err := s.journal.GetTrade(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, t)
}

func (s *Server) updateTrade(c *gin.Context) {
	var u models.TradeUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.journal.UpdateTrade(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, res)
}

func (s *Server) deleteTrade(c *gin.Context) {
	if err := s.journal.DeleteTrade(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

func (s *Server) listAchievements(c *gin.Context) {
	success(c, s.journal.Achievements())
}

func (s *Server) getAchievement(c *gin.Context) {
	st, err := s.journal.Achievement(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, st)
}

func (s *Server) getProfile(c *gin.Context) {
	success(c, s.journal.Profile())
}

type identityRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) updateIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, s.journal.UpdateIdentity(c.Request.Context(), req.Name, req.Email))
}

func (s *Server) updateSettings(c *gin.Context) {
	var u models.SettingsUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, err.Error())
		return
	}
	settings, err := s.journal.UpdateSettings(c.Request.Context(), u)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, settings)
}

type experienceRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

func (s *Server) addExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, s.journal.AddExperience(c.Request.Context(), req.Amount))
}

type badgeRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) addBadge(c *gin.Context) {
	var req badgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	added, err := s.journal.AddBadge(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"badge": req.Name, "added": added})
}

func (s *Server) removeBadge(c *gin.Context) {
	name := c.Param("name")
	removed := s.journal.RemoveBadge(c.Request.Context(), name)
	success(c, gin.H{"badge": name, "removed": removed})
}

func (s *Server) listStreaks(c *gin.Context) {
	success(c, s.journal.Streaks(c.Request.Context()))
}

func (s *Server) listChallenges(c *gin.Context) {
	success(c, s.journal.Challenges())
}

type progressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

func (s *Server) setChallengeProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ch, err := s.journal.SetChallengeProgress(c.Request.Context(), c.Param("id"), *req.Progress)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, ch)
}

func (s *Server) listPlaybooks(c *gin.Context) {
	playbooks, active := s.journal.Playbooks()
	if playbooks == nil {
		playbooks = []models.Playbook{}
	}
	success(c, gin.H{"playbooks": playbooks, "active_id": active})
}

func (s *Server) addPlaybook(c *gin.Context) {
	var in models.PlaybookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := s.journal.AddPlaybook(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, p)
}

func (s *Server) getPlaybook(c *gin.Context) {
	p, err := s.journal.GetPlaybook(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p)
}

func (s *Server) updatePlaybook(c *gin.Context) {
	var u models.PlaybookUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := s.journal.UpdatePlaybook(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p)
}

func (s *Server) deletePlaybook(c *gin.Context) {
	if err := s.journal.DeletePlaybook(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

func (s *Server) activatePlaybook(c *gin.Context) {
	if err := s.journal.ActivatePlaybook(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"active_id": c.Param("id")})
}

func (s *Server) statsSummary(c *gin.Context) {
	success(c, gin.H{
		"summary":     s.journal.Summary(),
		"current_run": s.journal.CurrentRun(),
	})
}

// GET /api/v1/stats/breakdown?by=symbol
func (s *Server) statsBreakdown(c *gin.Context) {
	key, err := stats.ParseGroupKey(c.DefaultQuery("by", string(stats.BySymbol)))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, s.journal.Breakdown(key))
}

// GET /api/v1/stats/calendar?year=2024&month=5
func (s *Server) statsCalendar(c *gin.Context) {
	now := s.journal.Now()
	year, month := now.Year(), int(now.Month())
	var err error
	if raw := c.Query("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			badRequest(c, "year must be an integer")
			return
		}
	}
	if raw := c.Query("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil || month < 1 || month > 12 {
			badRequest(c, "month must be between 1 and 12")
			return
		}
	}
	success(c, s.journal.Calendar(year, time.Month(month), now.Location()))
}

func (s *Server) listNotifications(c *gin.Context) {
	if s.feed == nil {
		success(c, []interface{}{})
		return
	}
	success(c, s.feed.All())
}
