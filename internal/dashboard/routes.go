package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/health"
	"github.com/zulandar/switchboard/internal/registry"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router. The
// submission route is only registered when a pipeline is available.
func registerRoutes(router *gin.Engine, db *gorm.DB, reg *registry.Registry, svc *dispatch.Service) {
	router.GET("/", handleIndex(db, reg))
	router.GET("/api/health", handleHealth(db, reg))
	router.GET("/api/deliveries", handleDeliveries(db))
	router.GET("/api/agents/:id/deliveries", handleAgentDeliveries(db))
	if svc != nil {
		router.POST("/api/messages", handleSubmit(svc))
	}
}

func handleIndex(db *gorm.DB, reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := health.Rebuild(db, reg.AgentIDs())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		snap := agg.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"agents":      len(snap.Agents),
			"healthy":     snap.Healthy,
			"degraded":    snap.Degraded,
			"unreachable": snap.Unreachable,
		})
	}
}

func handleHealth(db *gorm.DB, reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := health.Rebuild(db, reg.AgentIDs())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		snap := agg.Snapshot()

		agents := make([]gin.H, len(snap.Agents))
		for i, h := range snap.Agents {
			agents[i] = gin.H{
				"agent_id":             h.AgentID,
				"status":               h.Status,
				"consecutive_failures": h.ConsecutiveFailures,
				"last_seen":            h.LastSeen,
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"agents":      agents,
			"healthy":     snap.Healthy,
			"degraded":    snap.Degraded,
			"unreachable": snap.Unreachable,
		})
	}
}

func handleDeliveries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c.Query("limit"))
		rows, err := RecentDeliveries(db, "", limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": rows})
	}
}

func handleAgentDeliveries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c.Query("limit"))
		rows, err := RecentDeliveries(db, c.Param("id"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": rows})
	}
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
